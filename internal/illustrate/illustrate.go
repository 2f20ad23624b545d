// Package illustrate turns a rewritten post into an illustrative image.
// The whole stage is best-effort: any failure yields an empty URL, never an
// error, because illustration is always optional.
package illustrate

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kitayama-ai/x-viral-tweet-generator/internal/llmclient"
	"github.com/kitayama-ai/x-viral-tweet-generator/internal/types"
)

const imagePromptTemplate = `Create a visually striking infographic for a social-media post.

Content to visualize:
%s

Design requirements:
- Modern dark theme with accent colors (blue, purple, or green gradients)
- Clean, professional layout suitable for a timeline card
- Key points displayed as a visual list with icons or numbers
- Large, readable text for the main headline
- Aspect ratio 16:9, landscape
- High information density but not cluttered
- No watermarks, no stock photo feel
- Style: premium tech infographic, like a top-tier newsletter visual`

// Generator runs the illustration stage.
type Generator struct {
	Model llmclient.ImageModel
	Store ObjectStore
	Log   *logrus.Entry

	// Now is injectable for tests; zero value uses time.Now.
	Now func() time.Time
}

// Illustrate generates, stores, and links an image for the rewrite.
// Returns "" on any failure.
func (g *Generator) Illustrate(ctx context.Context, rewritten types.RewrittenPost) string {
	if g == nil || g.Model == nil || g.Store == nil {
		return ""
	}

	data, mimeType, err := g.Model.GenerateImage(ctx, buildImagePrompt(rewritten))
	if err != nil {
		if g.Log != nil {
			g.Log.WithError(err).Info("image generation failed, skipping")
		}
		return ""
	}

	name := g.filename(mimeType)
	url, err := g.Store.Put(ctx, name, data, mimeType)
	if err != nil {
		if g.Log != nil {
			g.Log.WithError(err).Info("image store failed, skipping")
		}
		return ""
	}
	if g.Log != nil {
		g.Log.WithFields(logrus.Fields{"name": name, "bytes": len(data)}).Info("image generated")
	}
	return url
}

func buildImagePrompt(rewritten types.RewrittenPost) string {
	summary := clip(rewritten.MainText, 200)
	if len(rewritten.Thread) > 0 {
		summary += "\n" + clip(rewritten.Thread[0], 150)
	}
	return fmt.Sprintf(imagePromptTemplate, summary)
}

// clip bounds s to n runes so a multi-byte character is never split.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// filename is timestamp + random suffix. Uniqueness is probabilistic, which
// is acceptable here.
func (g *Generator) filename(mimeType string) string {
	now := time.Now()
	if g.Now != nil {
		now = g.Now()
	}
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	ext := "png"
	if strings.Contains(mimeType, "jpeg") {
		ext = "jpg"
	}
	return fmt.Sprintf("%s_%s.%s", now.Format("20060102_150405"), hex.EncodeToString(suffix), ext)
}
