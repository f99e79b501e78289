package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"whatsapp-recruiting-funnel/internal/config"
	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
	"whatsapp-recruiting-funnel/internal/infra/db/docrepo"
	"whatsapp-recruiting-funnel/internal/infra/logging"
	"whatsapp-recruiting-funnel/internal/usecase"
)

// seedFile lists documents in their JSON field names.
type seedFile struct {
	Jobs          []map[string]any `yaml:"jobs"`
	Conversations []map[string]any `yaml:"conversations"`
}

type seedData struct {
	Jobs          []*model.Job
	Conversations []*model.Conversation
}

func parseSeed(b []byte) (*seedData, error) {
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	out := &seedData{}
	for i, raw := range f.Jobs {
		var j model.Job
		if err := remarshal(raw, &j); err != nil {
			return nil, fmt.Errorf("jobs[%d]: %w", i, err)
		}
		if j.Status == "" {
			j.Status = model.JobStatusOpen
		}
		out.Jobs = append(out.Jobs, &j)
	}
	for i, raw := range f.Conversations {
		var c model.Conversation
		if err := remarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("conversations[%d]: %w", i, err)
		}
		if c.ID == "" {
			return nil, fmt.Errorf("conversations[%d]: id is required", i)
		}
		if c.Role == "" {
			c.Role = model.RoleUser
		}
		out.Conversations = append(out.Conversations, &c)
	}
	return out, nil
}

// remarshal moves a yaml-decoded map onto the JSON-tagged model.
func remarshal(in map[string]any, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// applySeed writes every record. Jobs without an id get a new one.
func applySeed(ctx context.Context, out io.Writer, store repository.DocumentStore, jobs usecase.JobUseCase, data *seedData) error {
	for _, j := range data.Jobs {
		if err := jobs.Save(ctx, j); err != nil {
			return fmt.Errorf("save job %q: %w", j.Title, err)
		}
		fmt.Fprintf(out, "seeded job: %s (id=%s, status=%s)\n", j.Title, j.ID, j.Status)
	}
	convs := docrepo.NewConversationRepo(store)
	for _, c := range data.Conversations {
		if err := convs.Save(ctx, c); err != nil {
			return fmt.Errorf("save conversation %s: %w", c.ID, err)
		}
		fmt.Fprintf(out, "seeded conversation: %s (%s)\n", c.Name, c.ID)
	}
	fmt.Fprintln(out, "✅ Seeding complete.")
	return nil
}

func seedCmd(g *globalFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load jobs and conversations into the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(g.configPath, g.dev)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Log, cfg.Runtime.Dev)
			b, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			data, err := parseSeed(b)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			store, pool, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			if pool != nil {
				defer pool.Close()
			}
			jobs := usecase.NewJobUseCase(docrepo.NewJobRepo(store), logger)
			return applySeed(ctx, cmd.OutOrStdout(), store, jobs, data)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file")
	return cmd
}
