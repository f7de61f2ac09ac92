package googlebooks

// VolumesResponse is the subset of the volumes endpoint requested through the
// fields parameter.
type VolumesResponse struct {
	TotalItems int      `json:"totalItems,omitempty"`
	Items      []Volume `json:"items,omitempty"`
}

// Volume wraps one search hit.
type Volume struct {
	VolumeInfo *VolumeInfo `json:"volumeInfo,omitempty"`
}

// VolumeInfo carries the bibliographic data of a volume.
type VolumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle,omitempty"`
	Authors             []string             `json:"authors,omitempty"`
	Publisher           string               `json:"publisher,omitempty"`
	PublishedDate       string               `json:"publishedDate,omitempty"`
	Description         string               `json:"description,omitempty"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers,omitempty"`
	PageCount           int                  `json:"pageCount,omitempty"`
	Categories          []string             `json:"categories,omitempty"`
	ImageLinks          *ImageLinks          `json:"imageLinks,omitempty"`
	Language            string               `json:"language,omitempty"`
	PreviewLink         string               `json:"previewLink,omitempty"`
}

// IndustryIdentifier is a {type, identifier} pair such as {"ISBN_13", "978..."}.
type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// ImageLinks holds cover thumbnails.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail,omitempty"`
	Thumbnail      string `json:"thumbnail,omitempty"`
}

type cachedVolume struct {
	Data     *VolumeInfo `json:"data"`
	NotFound bool        `json:"not_found"`
}
