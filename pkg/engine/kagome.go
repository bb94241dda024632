// Package engine adapts the kagome morphological analyzer to the compile and
// hot-swap operations the recompilation pipeline drives.
package engine

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ikawaha/kagome-dict/dict"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"go.uber.org/zap"
)

// Token is one analyzed unit of text with the fields a TTS front end cares
// about.
type Token struct {
	Surface       string
	Pronunciation string
	PartsOfSpeech []string
}

// Kagome wraps a kagome tokenizer whose user dictionary can be hot-swapped.
// The zero value is not usable; construct with New.
type Kagome struct {
	mu     sync.RWMutex
	tok    *tokenizer.Tokenizer
	logger *zap.Logger
}

// New builds an analyzer over the bundled IPA system dictionary with no user
// dictionary loaded yet.
func New(logger *zap.Logger) (*Kagome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("initialize tokenizer: %w", err)
	}
	return &Kagome{tok: t, logger: logger}, nil
}

// Compile translates compiler-format CSV entries at sourcePath into kagome's
// user-dictionary record format at outputPath. The output is the opaque
// artifact LoadActive later consumes.
func (k *Kagome) Compile(ctx context.Context, sourcePath, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	var b strings.Builder
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 15 {
			return fmt.Errorf("line %d: expected 15 CSV fields, got %d", lineNo, len(fields))
		}
		surface := fields[0]
		pos := fields[4]
		pronunciation := fields[12]
		if surface == "" || pronunciation == "" {
			return fmt.Errorf("line %d: empty surface or pronunciation", lineNo)
		}
		// kagome user dict record: text, segmentation, readings, POS.
		// Entries are single words, so segmentation and reading are the
		// whole surface and pronunciation.
		fmt.Fprintf(&b, "%s,%s,%s,%s\n", surface, surface, pronunciation, pos)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan source: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write compiled records: %w", err)
	}
	return nil
}

// LoadActive replaces the active tokenizer with one carrying the compiled
// user dictionary at outputPath. Not reentrant on its own; callers serialize
// through the pipeline.
func (k *Kagome) LoadActive(ctx context.Context, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	udict, err := dict.NewUserDict(outputPath)
	if err != nil {
		return fmt.Errorf("read compiled dictionary: %w", err)
	}
	t, err := tokenizer.New(ipa.Dict(), tokenizer.UserDict(udict), tokenizer.OmitBosEos())
	if err != nil {
		return fmt.Errorf("build tokenizer: %w", err)
	}

	k.mu.Lock()
	k.tok = t
	k.mu.Unlock()
	k.logger.Debug("active dictionary replaced", zap.String("path", outputPath))
	return nil
}

// Analyze tokenizes text through the currently active dictionary. User
// entries surface with their registered pronunciation.
func (k *Kagome) Analyze(text string) []Token {
	k.mu.RLock()
	t := k.tok
	k.mu.RUnlock()

	var result []Token
	for _, tk := range t.Tokenize(text) {
		if tk.Class == tokenizer.DUMMY || strings.TrimSpace(tk.Surface) == "" {
			continue
		}
		features := tk.Features()
		// IPA feature layout: reading at index 7, pronunciation at 8.
		// User-dictionary entries carry POS, segmentation and readings
		// instead, with the readings at index 2.
		pron := ""
		switch {
		case tk.Class == tokenizer.USER && len(features) > 2:
			pron = strings.ReplaceAll(features[2], "/", "")
		case len(features) > 8 && features[8] != "*":
			pron = features[8]
		case len(features) > 7 && features[7] != "*":
			pron = features[7]
		}
		result = append(result, Token{
			Surface:       tk.Surface,
			Pronunciation: pron,
			PartsOfSpeech: features,
		})
	}
	return result
}
