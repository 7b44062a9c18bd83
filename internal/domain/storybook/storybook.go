package storybook

// Renderable is a displayable unit (cover or page) with optional image and
// optional narration audio. A Renderable with Success=false or missing media
// still renders as a placeholder.
type Renderable struct {
	Success      bool   `json:"success"`
	ImagePrompt  string `json:"image_prompt,omitempty"`
	ImageData    string `json:"image_data,omitempty"` // base64 PNG
	ImageURL     string `json:"image_url,omitempty"`
	AudioURL     string `json:"audio_url,omitempty"`
	AudioSuccess bool   `json:"audio_success"`
}

// AudioRef returns the opaque narration handle for this renderable, or ""
// when no usable audio exists.
func (r Renderable) AudioRef() string {
	if !r.AudioSuccess {
		return ""
	}
	return r.AudioURL
}

// HasImage reports whether any image payload is present.
func (r Renderable) HasImage() bool {
	return r.ImageData != "" || r.ImageURL != ""
}

// Page is one illustrated story page with its narration text.
type Page struct {
	Renderable
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// Storybook is one generated picture book: a cover plus an ordered sequence
// of pages. Immutable once received from the backend.
type Storybook struct {
	ID            string     `json:"id"`
	Theme         string     `json:"theme"`
	MainCharacter string     `json:"main_character"`
	Setting       string     `json:"setting,omitempty"`
	CreatedAt     string     `json:"created_at,omitempty"`
	Cover         Renderable `json:"cover"`
	Pages         []Page     `json:"pages"`
}

// Analysis is the backend's reading of a free-text request: the story
// elements it extracted before generating.
type Analysis struct {
	Theme         string `json:"theme"`
	Character     string `json:"character"`
	Setting       string `json:"setting"`
	CharacterDesc string `json:"character_desc,omitempty"`
	SceneDesc     string `json:"scene_desc,omitempty"`
}
