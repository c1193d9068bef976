package pageinfo

// OpenGraph holds OpenGraph protocol metadata (https://ogp.me/).
type OpenGraph struct {
	Type             string           `json:"type,omitempty"`
	Title            string           `json:"title,omitempty"`
	Description      string           `json:"description,omitempty"`
	URL              string           `json:"url,omitempty"`
	SiteName         string           `json:"siteName,omitempty"`
	Locale           string           `json:"locale,omitempty"`
	LocaleAlternates []string         `json:"localeAlternates,omitempty"`
	Images           []OpenGraphMedia `json:"images,omitempty"`
	Videos           []OpenGraphMedia `json:"videos,omitempty"`
	Audios           []OpenGraphMedia `json:"audios,omitempty"`

	// Properties holds og: properties without a dedicated field,
	// keyed without the "og:" prefix.
	Properties map[string]string `json:"properties,omitempty"`
}

// IsEmpty reports whether none of the core OpenGraph fields are set.
func (og *OpenGraph) IsEmpty() bool {
	return og.Type == "" &&
		og.Title == "" &&
		og.Description == "" &&
		og.URL == "" &&
		len(og.Images) == 0
}

// OpenGraphMedia is an image, video or audio object.
// Width and Height are zero when absent or unparsable.
type OpenGraphMedia struct {
	URL        string            `json:"url"`
	SecureURL  string            `json:"secureUrl,omitempty"`
	MIMEType   string            `json:"type,omitempty"`
	Width      int               `json:"width,omitempty"`
	Height     int               `json:"height,omitempty"`
	Alt        string            `json:"alt,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}
