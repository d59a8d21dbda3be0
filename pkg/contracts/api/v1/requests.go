// Package api contains the request contracts of the CleanViz HTTP API.
// Version v1 represents the current stable API version.
package api

// UploadRequest carries the form fields sent with a multipart upload.
type UploadRequest struct {
	FileName  string `json:"file_name" validate:"required,max=255,filename"`
	Delimiter string `json:"delimiter" form:"delimiter" validate:"omitempty,oneof=auto comma tab"`
}

// ViewRequest selects the optional parts of a session view.
type ViewRequest struct {
	Stats bool   `json:"stats" query:"stats"`
	Plot  string `json:"plot" query:"plot" validate:"omitempty,oneof=histogram box scatter heatmap pca volcano"`
	X     string `json:"x" query:"x" validate:"max=256"`
	Y     string `json:"y" query:"y" validate:"max=256"`
}

// CleaningRequest replaces the cleaning options of a session. Renames map
// current column names to new ones; an empty target keeps the name.
type CleaningRequest struct {
	DropEmptyRows    bool              `json:"drop_empty_rows"`
	DropEmptyColumns bool              `json:"drop_empty_columns"`
	Renames          map[string]string `json:"renames,omitempty" validate:"omitempty,max=1000,dive,keys,min=1,max=256,endkeys,max=256"`
}

// PlotRequest selects a plot and its columns.
type PlotRequest struct {
	Kind     string `json:"kind" param:"kind" validate:"required,oneof=histogram box scatter heatmap pca volcano"`
	X        string `json:"x" query:"x" validate:"max=256"`
	Y        string `json:"y" query:"y" validate:"max=256"`
	Download bool   `json:"download" query:"download"`
}
