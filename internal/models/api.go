package models

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BatchForm is the multipart form accepted by the batch endpoints.
type BatchForm struct {
	Ratio   string  `form:"ratio" json:"ratio" binding:"omitempty,aspectratio"`
	Width   int     `form:"width" json:"width" binding:"omitempty,min=100,max=10000,multipleof10"`
	Quality float64 `form:"quality" json:"quality" binding:"omitempty,min=0.1,max=1"`
}

type RatioOptions struct {
	Ratios         []string `json:"ratios"`
	DefaultRatio   string   `json:"default_ratio"`
	MinWidth       int      `json:"min_width"`
	MaxWidth       int      `json:"max_width"`
	WidthStep      int      `json:"width_step"`
	DefaultWidth   int      `json:"default_width"`
	MinQuality     float64  `json:"min_quality"`
	MaxQuality     float64  `json:"max_quality"`
	DefaultQuality float64  `json:"default_quality"`
}
