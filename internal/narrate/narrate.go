// Package narrate fills narration gaps: pages whose audio generation failed
// server-side get a locally synthesized mp3 before the reading session is
// built.
package narrate

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// HasCredentials reports whether Google Cloud credentials are available.
func HasCredentials() bool {
	_, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS")
	return ok
}

// Narrator synthesizes page text to mp3 files in a local cache.
type Narrator struct {
	client   *texttospeech.Client
	cacheDir string
	voice    string
}

func New(ctx context.Context, cacheDir, voice string) (*Narrator, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create tts client: %w", err)
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create narration cache dir: %w", err)
	}
	return &Narrator{client: client, cacheDir: cacheDir, voice: voice}, nil
}

func (n *Narrator) Close() error {
	return n.client.Close()
}

// Synthesize renders text to a cached mp3 and returns its path. Repeated
// text+voice combinations reuse the cached file.
func (n *Narrator) Synthesize(ctx context.Context, text string) (string, error) {
	name := fmt.Sprintf("%x.mp3", md5.Sum([]byte(text+n.voice)))
	path := filepath.Join(n.cacheDir, name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "en-US",
			Name:         n.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}
	resp, err := n.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return "", fmt.Errorf("synthesize narration: %w", err)
	}
	if err := os.WriteFile(path, resp.AudioContent, 0644); err != nil {
		return "", fmt.Errorf("cache narration: %w", err)
	}
	return path, nil
}
