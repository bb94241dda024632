package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ttsforge/voxdict/pkg/history"
	"github.com/ttsforge/voxdict/pkg/word"
)

var (
	applySurface  string
	applyPron     string
	applyAccent   int
	applyType     string
	applyPriority int

	importOverride bool
	historyLimit   int
	historyWordID  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all user dictionary entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := newServices()
		if err != nil {
			return err
		}
		defer svcs.close()

		dict, err := svcs.dict.Lookup(cmd.Context())
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(dict))
		for id := range dict {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			e := dict[id]
			fmt.Printf("%s\t%s\t%s\t%d/%d\tpriority=%d\n",
				id, e.Surface, e.Pronunciation, e.AccentType, e.MoraCount, e.Priority)
		}
		return nil
	},
}

func specFromFlags() word.Spec {
	return word.Spec{
		Surface:       applySurface,
		Pronunciation: applyPron,
		AccentType:    applyAccent,
		WordType:      word.WordType(applyType),
		Priority:      applyPriority,
	}
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Add a new word and reload the analyzer",
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := newServices()
		if err != nil {
			return err
		}
		defer svcs.close()

		id, err := svcs.dict.Apply(cmd.Context(), specFromFlags())
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <id>",
	Short: "Replace an existing word and reload the analyzer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := newServices()
		if err != nil {
			return err
		}
		defer svcs.close()
		return svcs.dict.Rewrite(cmd.Context(), args[0], specFromFlags())
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a word and reload the analyzer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := newServices()
		if err != nil {
			return err
		}
		defer svcs.close()
		return svcs.dict.Delete(cmd.Context(), args[0])
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge a dictionary document into the user dictionary",
	Long: `Reads a JSON document mapping word UUIDs to save-format entries and merges
it into the user dictionary as one batch. Without --override, existing
entries win on id collision.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := readImportFile(args[0])
		if err != nil {
			return err
		}

		svcs, err := newServices()
		if err != nil {
			return err
		}
		defer svcs.close()

		if err := svcs.dict.Import(cmd.Context(), entries, importOverride); err != nil {
			return err
		}
		fmt.Printf("imported %d entries\n", len(entries))
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Recompile and reload the analyzer from the persisted dictionary",
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := newServices()
		if err != nil {
			return err
		}
		defer svcs.close()
		return svcs.dict.Refresh(cmd.Context())
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded dictionary mutations",
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := newServices()
		if err != nil {
			return err
		}
		defer svcs.close()
		if svcs.history == nil {
			return fmt.Errorf("history is disabled (history_db_path is empty)")
		}

		var recs []history.Record
		if historyWordID != "" {
			recs, err = svcs.history.ForWord(historyWordID)
		} else {
			recs, err = svcs.history.Recent(historyLimit)
		}
		if err != nil {
			return err
		}
		for _, r := range recs {
			fmt.Printf("%s\t%s\t%s\t%s\n", r.At.Format(time.RFC3339), r.Op, r.WordID, r.Surface)
		}
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <text>",
	Short: "Tokenize text through the active dictionary",
	Long: `Loads the current user dictionary into the analyzer, tokenizes the given
text and prints surface forms with their pronunciations, so an override can
be checked end to end.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := newServices()
		if err != nil {
			return err
		}
		defer svcs.close()

		if err := svcs.dict.Refresh(cmd.Context()); err != nil {
			return err
		}
		for _, tok := range svcs.analyzer.Analyze(args[0]) {
			fmt.Printf("%s\t%s\n", tok.Surface, tok.Pronunciation)
		}
		return nil
	},
}

// readImportFile parses a JSON dictionary document into in-memory entries.
func readImportFile(path string) (map[string]word.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	var saved map[string]word.SaveFormatEntry
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	entries := make(map[string]word.Entry, len(saved))
	for id, s := range saved {
		entry, err := word.FromSaveFormat(s)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", id, err)
		}
		entries[id] = entry
	}
	return entries, nil
}

func init() {
	for _, c := range []*cobra.Command{applyCmd, rewriteCmd} {
		c.Flags().StringVar(&applySurface, "surface", "", "surface form of the word")
		c.Flags().StringVar(&applyPron, "pronunciation", "", "katakana pronunciation")
		c.Flags().IntVar(&applyAccent, "accent", 0, "accent type (0 for heiban)")
		c.Flags().StringVar(&applyType, "type", string(word.ProperNoun),
			"word type: PROPER_NOUN, COMMON_NOUN, VERB, ADJECTIVE or SUFFIX")
		c.Flags().IntVar(&applyPriority, "priority", 5, "priority from 0 (lowest) to 10 (highest)")
		_ = c.MarkFlagRequired("surface")
		_ = c.MarkFlagRequired("pronunciation")
	}

	importCmd.Flags().BoolVar(&importOverride, "override", false, "incoming entries win on id collision")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum number of records to show")
	historyCmd.Flags().StringVar(&historyWordID, "word", "", "show history for one word id")

	rootCmd.AddCommand(listCmd, applyCmd, rewriteCmd, deleteCmd, importCmd, refreshCmd, historyCmd, analyzeCmd)
}
