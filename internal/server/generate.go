package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"talecanvas/internal/domain/storybook"
)

// analyzeMessage is the canned counterpart of the backend's chat analysis:
// a naive reading of the free-text request into story elements.
func analyzeMessage(message string) *storybook.Analysis {
	character := "a curious fox cub"
	setting := "a moonlit forest"

	lower := strings.ToLower(message)
	for keyword, c := range map[string]string{
		"dragon": "a small green dragon",
		"cat":    "a whiskered tabby cat",
		"robot":  "a rusty little robot",
		"girl":   "a brave young girl",
		"boy":    "an adventurous boy",
	} {
		if strings.Contains(lower, keyword) {
			character = c
			break
		}
	}
	for keyword, s := range map[string]string{
		"sea":     "a sparkling seaside cove",
		"ocean":   "a sparkling seaside cove",
		"space":   "a starry stretch of space",
		"castle":  "an old stone castle",
		"garden":  "a secret walled garden",
		"kitchen": "a warm busy kitchen",
	} {
		if strings.Contains(lower, keyword) {
			setting = s
			break
		}
	}

	return &storybook.Analysis{
		Theme:         strings.TrimSpace(message),
		Character:     character,
		Setting:       setting,
		CharacterDesc: character + " with bright, friendly eyes",
		SceneDesc:     setting + " painted in soft watercolour light",
	}
}

// buildStorybook produces a placeholder book: real text pages, no image or
// audio payloads. The player must render these as placeholders without
// complaint, which makes the demo backend a handy degenerate-media fixture.
func (s *Server) buildStorybook(a *storybook.Analysis) *storybook.Storybook {
	book := &storybook.Storybook{
		ID:            uuid.NewString(),
		Theme:         a.Theme,
		MainCharacter: a.Character,
		Setting:       a.Setting,
		CreatedAt:     time.Now().Format(time.RFC3339),
		Cover:         storybook.Renderable{Success: false},
	}

	beats := []string{
		"%s woke up in %s, sure that today would be different.",
		"Before long, %s found a door no one had ever noticed in %s.",
		"Behind it waited a puzzle only %s could solve.",
		"Things went wrong at first, and %s wanted to give up.",
		"But a small kindness turned everything around for %s.",
		"That night, %s fell asleep in %s, already dreaming of tomorrow.",
	}

	for i := 0; i < s.pages; i++ {
		beat := beats[i%len(beats)]
		text := beat
		switch strings.Count(beat, "%s") {
		case 2:
			text = fmt.Sprintf(beat, a.Character, a.Setting)
		case 1:
			text = fmt.Sprintf(beat, a.Character)
		}
		book.Pages = append(book.Pages, storybook.Page{
			PageNumber: i + 1,
			Text:       text,
			Renderable: storybook.Renderable{Success: false},
		})
	}
	return book
}
