package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"svw.info/propagenda/internal/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readBoard accepts either a bare JSON array of objects or {"objects": [...]}.
func readBoard(path string) ([]domain.BoardObject, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	data = bytes.TrimSpace(data)
	var objects []domain.BoardObject
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &objects)
	} else {
		var wrapped struct {
			Objects []domain.BoardObject `json:"objects"`
		}
		err = json.Unmarshal(data, &wrapped)
		objects = wrapped.Objects
	}
	if err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	return objects, nil
}

func checkCmd(a *app) *cobra.Command {
	var agendaID, board string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a board file against one agenda",
		RunE: func(cmd *cobra.Command, args []string) error {
			objects, err := readBoard(board)
			if err != nil {
				return err
			}
			uc := a.service(a.cfg.Selector.Seed)
			uc.LoadCatalog(cmd.Context())
			v, conflicts, err := uc.Evaluate(cmd.Context(), agendaID, objects)
			if err != nil {
				if len(conflicts) > 0 {
					return fmt.Errorf("%w at %v", err, conflicts)
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVar(&agendaID, "agenda", "", "agenda id")
	cmd.Flags().StringVar(&board, "board", "-", "board JSON file, - for stdin")
	_ = cmd.MarkFlagRequired("agenda")
	return cmd
}

type nextOutput struct {
	Agenda *domain.Agenda `json:"agenda,omitempty"`
	Round  int            `json:"round"`
	Rounds int            `json:"rounds"`
	Done   bool           `json:"done"`
}

func nextCmd(a *app) *cobra.Command {
	var completed []string
	var seed int64
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Pick the next agenda given the completed ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = a.cfg.Selector.Seed
			}
			uc := a.service(seed)
			uc.LoadCatalog(cmd.Context())
			progress := uc.Progress(completed)
			ag, ok, err := uc.Next(progress.Completed)
			if err != nil {
				return err
			}
			out := nextOutput{Round: len(progress.Completed), Rounds: uc.Rounds(), Done: !ok}
			if ok {
				out.Agenda = &ag
				out.Round++
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringSliceVar(&completed, "completed", nil, "comma-separated completed agenda ids")
	cmd.Flags().Int64Var(&seed, "seed", 0, "selection seed, 0 for the clock")
	return cmd
}

func agendasCmd(a *app) *cobra.Command {
	var vocabulary bool
	cmd := &cobra.Command{
		Use:   "agendas",
		Short: "List the loaded agendas and the game length",
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := a.service(a.cfg.Selector.Seed)
			c := uc.LoadCatalog(cmd.Context())
			w := cmd.OutOrStdout()
			for _, ag := range c.Agendas() {
				note := ""
				if r, _ := c.Rule(ag.ID); !r.Checked() {
					note = "  (no check)"
				}
				fmt.Fprintf(w, "%-22s %4.1f  %s%s\n", ag.ID, ag.Difficulty, ag.Title, note)
			}
			fmt.Fprintf(w, "rounds: %d\n", uc.Rounds())
			if vocabulary {
				printVocabulary(w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&vocabulary, "vocabulary", false, "also list object names, sizes and colors")
	return cmd
}

func printVocabulary(w io.Writer) {
	for _, t := range domain.ObjectTypes {
		names := make([]string, 0, len(domain.Emojis[t]))
		for name := range domain.Emojis[t] {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(w, "%s:", t)
		for _, name := range names {
			fmt.Fprintf(w, " %s %s", domain.Emojis[t][name], name)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprint(w, "sizes:")
	for _, sz := range domain.Sizes {
		fmt.Fprintf(w, " %s", sz)
	}
	fmt.Fprint(w, "\ncolors:")
	for _, c := range domain.Colors {
		fmt.Fprintf(w, " %s", c)
	}
	fmt.Fprintln(w)
}
