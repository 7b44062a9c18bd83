// Package app is the interactive CLI around the storybook player: it wires
// the backend client, the audio source and the presentation events to the
// terminal.
package app

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"talecanvas/internal/backend"
	"talecanvas/internal/cli/scheme/colours"
	"talecanvas/internal/domain/storybook"
	"talecanvas/internal/narrate"
	"talecanvas/internal/player"
	"talecanvas/internal/player/audio"
	"talecanvas/internal/server"
)

type App struct {
	player  *player.Player
	backend *backend.Client
	ctx     context.Context
	Cancel  context.CancelFunc
}

func New() *App {
	ctx, cancel := context.WithCancel(context.Background())

	var source audio.Source
	if viper.GetBool("audio.mock") {
		source = audio.NewMock()
	} else {
		source = audio.NewSpeakerSource(audioCacheDir())
	}

	a := &App{
		backend: backend.NewClient(
			viper.GetString("backend.url"),
			time.Duration(viper.GetInt("backend.timeout_seconds"))*time.Second,
		),
		ctx:    ctx,
		Cancel: cancel,
	}

	a.player = player.New(source, player.Events{
		NavigationChanged: func(canBack, canForward bool, label string) {
			colours.Info.Printf("📍 %s", label)
			if !canBack && !canForward {
				colours.Warning.Print("  (nothing to turn to)")
			}
			fmt.Println()
		},
		PlaybackStateChanged: func(playing bool) {
			if playing {
				colours.Success.Println("▶️  Narration playing")
			} else {
				colours.Warning.Println("⏹️  Narration stopped")
			}
		},
		AutoplayStateChanged: func(active bool) {
			if active {
				colours.Success.Println("🔁 Autoplay on")
			} else {
				colours.Warning.Println("🔁 Autoplay off")
			}
		},
		AutoplayFinished: func() {
			colours.Prompt.Println("🌙 The end! Sweet dreams!")
		},
		PlaybackError: func(err error) {
			colours.Warning.Printf("🔇 %v\n", err)
		},
	}, player.Options{
		SettleDelay: time.Duration(viper.GetInt("player.settle_delay_ms")) * time.Millisecond,
		ResumeDelay: time.Duration(viper.GetInt("player.resume_delay_ms")) * time.Millisecond,
	})

	return a
}

// Teardown releases the active session, if any.
func (a *App) Teardown() {
	if s := a.player.Session(); s != nil {
		s.Teardown()
	}
}

// Tell sends the chat request to the backend and reads the result.
func (a *App) Tell(cmd *cobra.Command, args []string) {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		colours.Prompt.Print("✨ What story shall we make? ")
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		message = strings.TrimSpace(line)
	}
	if message == "" {
		colours.Error.Println("❌ Tell me something to build a story from!")
		return
	}

	colours.Info.Println("🎨 Asking the storyteller... this can take a while.")
	result, err := a.backend.GenerateFromChat(a.ctx, message)
	if err != nil {
		colours.Error.Printf("❌ Generation request failed: %v\n", err)
		return
	}
	if !result.Success || result.Storybook == nil {
		colours.Error.Printf("❌ The storyteller declined: %s\n", result.Error)
		return
	}
	if result.Analysis != nil {
		colours.Info.Printf("💡 Theme: %s | Character: %s | Setting: %s\n",
			result.Analysis.Theme, result.Analysis.Character, result.Analysis.Setting)
	}

	a.read(cmd, result.Storybook)
}

// Open loads a saved storybook JSON and reads it offline.
func (a *App) Open(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		colours.Error.Println("❌ Which file? usage: talecanvas open <storybook.json>")
		return
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		colours.Error.Printf("❌ Could not read %s: %v\n", args[0], err)
		return
	}
	var book storybook.Storybook
	if err := json.Unmarshal(data, &book); err != nil {
		colours.Error.Printf("❌ Not a storybook file: %v\n", err)
		return
	}

	a.read(cmd, &book)
}

func (a *App) read(cmd *cobra.Command, book *storybook.Storybook) {
	if wantNarrate, _ := cmd.Flags().GetBool("narrate"); wantNarrate {
		a.fillNarration(book)
	}

	fmt.Println()
	colours.Title.Printf("📖 %s\n", book.Theme)
	if book.MainCharacter != "" {
		colours.Info.Printf("⭐ Starring %s\n", book.MainCharacter)
	}
	fmt.Println()

	session := a.player.LoadStorybook(book)
	a.readLoop(session)
}

// fillNarration synthesizes audio for silent pages when credentials allow.
func (a *App) fillNarration(book *storybook.Storybook) {
	if !narrate.HasCredentials() {
		colours.Warning.Println("⚠️ --narrate needs GOOGLE_APPLICATION_CREDENTIALS; skipping")
		return
	}
	n, err := narrate.New(a.ctx, narrationCacheDir(), viper.GetString("narrate.voice"))
	if err != nil {
		colours.Warning.Printf("⚠️ Narration synthesis unavailable: %v\n", err)
		return
	}
	defer n.Close()
	colours.Info.Println("🔊 Synthesizing missing narration...")
	n.Fill(a.ctx, book)
}

// readLoop is the interactive reading session: single-letter commands drive
// the session until quit or shutdown.
func (a *App) readLoop(session *player.Session) {
	a.showCurrent(session)
	colours.Prompt.Println("⌨️  Enter/n next · b back · p play/pause · a autoplay · e export · q quit")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-a.ctx.Done():
			return
		default:
		}

		fmt.Print("> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		switch strings.TrimSpace(strings.ToLower(input)) {
		case "", "n", "next":
			if session.GoForward() {
				a.showCurrent(session)
			} else {
				colours.Warning.Println("📕 Already at the last page")
			}
		case "b", "back":
			if session.Cursor.CanGoBack() {
				session.GoBack()
				a.showCurrent(session)
			} else {
				colours.Warning.Println("📕 Already at the cover")
			}
		case "p", "play":
			_ = session.TogglePlayback()
		case "a", "auto":
			session.ToggleAutoplay()
		case "e", "export":
			a.exportCurrent(session)
		case "q", "quit":
			session.Teardown()
			colours.Warning.Println("👋 Goodbye! Sweet dreams! 🌙")
			return
		default:
			colours.Info.Println("ℹ️  n next, b back, p play, a autoplay, e export, q quit")
		}
	}
}

func (a *App) showCurrent(session *player.Session) {
	fmt.Println()
	if page, ok := session.CurrentPage(); ok {
		if !page.HasImage() {
			colours.Warning.Println("🖼️  [no illustration]")
		}
		colours.PageText.Println(page.Text)
	} else if book := session.Book(); book != nil {
		colours.Title.Printf("📖 %s\n", book.Theme)
	}
}

func (a *App) exportCurrent(session *player.Session) {
	book := session.Book()
	if book == nil {
		colours.Error.Println("❌ Nothing to export")
		return
	}
	a.exportByID(book.ID)
}

// Export downloads the PDF for the given (or current) storybook.
func (a *App) Export(cmd *cobra.Command, args []string) {
	id := ""
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		book, err := a.backend.CurrentStorybook(a.ctx)
		if err != nil {
			colours.Error.Printf("❌ %v\n", err)
			return
		}
		id = book.ID
	}
	a.exportByID(id)
}

func (a *App) exportByID(id string) {
	name := fmt.Sprintf("storybook_%s.pdf", id)
	f, err := os.Create(name)
	if err != nil {
		colours.Error.Printf("❌ Could not create %s: %v\n", name, err)
		return
	}
	defer f.Close()

	colours.Info.Println("📄 Requesting PDF export...")
	if err := a.backend.ExportPDF(a.ctx, id, f); err != nil {
		colours.Error.Printf("❌ Export failed: %v\n", err)
		os.Remove(name)
		return
	}
	colours.Success.Printf("✅ Saved %s\n", name)
}

// Serve runs the demo backend.
func (a *App) Serve(cmd *cobra.Command, args []string) {
	srv := server.New(viper.GetInt("server.pages"))
	if err := srv.Run(viper.GetString("server.addr")); err != nil {
		logrus.WithError(err).Fatal("demo backend failed")
	}
}

// Settings prints the effective configuration.
func (a *App) Settings(cmd *cobra.Command, args []string) {
	colours.Title.Println("⚙️ Settings")
	for _, key := range []string{
		"backend.url", "backend.timeout_seconds",
		"player.settle_delay_ms", "player.resume_delay_ms",
		"audio.cache_dir", "audio.mock", "narrate.voice",
		"server.addr", "server.pages",
	} {
		fmt.Printf("  %-24s %v\n", key, viper.Get(key))
	}
}

func audioCacheDir() string {
	if dir := viper.GetString("audio.cache_dir"); dir != "" {
		return dir
	}
	return cacheSubdir("audio")
}

func narrationCacheDir() string {
	return cacheSubdir("narration")
}

// cacheSubdir resolves a cache location, preferring the user cache dir and
// falling back to the cwd.
func cacheSubdir(name string) string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "talecanvas", name)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".talecanvas", "cache", name)
	}
	return filepath.Join("cache", name)
}
