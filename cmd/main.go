package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"talecanvas/internal/app"
	"talecanvas/internal/cli/scheme/colours"
	"talecanvas/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {

	config.SetDefaults()

	a := app.New()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		a.Cancel()
		a.Teardown()
		fmt.Println("\n" + colours.Warning.Sprint("👋 Goodbye! Sweet dreams! 🌙"))
		os.Exit(0)
	}()

	rootCmd := &cobra.Command{
		Use:   "talecanvas",
		Short: "🎨 A canvas for generated storybooks",
		Long: `
┌──────────────────────────────────────┐
│  🎨 Welcome to TaleCanvas! 📖       │
│  Tell it a story idea, and read the  │
│  illustrated, narrated result ✨    │
└──────────────────────────────────────┘

TaleCanvas turns a story request into an illustrated storybook and plays
it back: page by page, with narration, or hands-free in autoplay. 🌙
		`,
		Run: func(cmd *cobra.Command, args []string) {
			showWelcome()
		},
	}

	tellCmd := &cobra.Command{
		Use:   "tell [story idea...]",
		Short: "✨ Generate a storybook from a story idea",
		Long:  "Send a free-text story request to the backend and read the generated book",
		Run:   a.Tell,
	}

	openCmd := &cobra.Command{
		Use:   "open <storybook.json>",
		Short: "📖 Read a saved storybook",
		Long:  "Load a storybook JSON from disk and read it offline",
		Run:   a.Open,
	}

	exportCmd := &cobra.Command{
		Use:   "export [storybook-id]",
		Short: "📄 Download the PDF export",
		Long:  "Ask the backend to render the storybook as a PDF and save it locally",
		Run:   a.Export,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "🛠️ Run the demo backend",
		Long:  "Serve canned storybook generation and PDF export for local development",
		Run:   a.Serve,
	}

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "⚙️ Show effective configuration",
		Run:   a.Settings,
	}

	tellCmd.Flags().Bool("narrate", false, "Synthesize narration for pages without audio (needs Google credentials)")
	openCmd.Flags().Bool("narrate", false, "Synthesize narration for pages without audio (needs Google credentials)")

	rootCmd.AddCommand(tellCmd, openCmd, exportCmd, serveCmd, settingsCmd)

	if err := rootCmd.Execute(); err != nil {
		colours.Error.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func showWelcome() {
	fmt.Println()
	colours.Title.Println("🌟 Welcome to TaleCanvas! 🌟")
	fmt.Println()
	colours.Info.Println("📚 Available commands:")
	fmt.Println("  • talecanvas tell     - Generate a storybook from an idea")
	fmt.Println("  • talecanvas open     - Read a saved storybook file")
	fmt.Println("  • talecanvas export   - Download the PDF export")
	fmt.Println("  • talecanvas serve    - Run the local demo backend")
	fmt.Println("  • talecanvas settings - Show configuration")
	fmt.Println()
	colours.Prompt.Println("✨ Ready to paint a story? ✨")
}

// Configuration management with Viper
func init() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	viper.SetConfigName("talecanvas")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.talecanvas")
	viper.AddConfigPath(".")

	viper.ReadInConfig()
}
