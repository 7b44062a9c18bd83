package config

import "github.com/spf13/viper"

// SetDefaults installs the effective configuration defaults. Overridable
// via talecanvas.yaml in the cwd or $HOME/.talecanvas.
func SetDefaults() {
	viper.SetDefault("backend.url", "http://localhost:5000")
	viper.SetDefault("backend.timeout_seconds", 180)
	viper.SetDefault("player.settle_delay_ms", 1000)
	viper.SetDefault("player.resume_delay_ms", 500)
	viper.SetDefault("audio.cache_dir", "")
	viper.SetDefault("audio.mock", false)
	viper.SetDefault("narrate.voice", "en-US-Chirp3-HD-Charon")
	viper.SetDefault("server.addr", ":5000")
	viper.SetDefault("server.pages", 6)
}
