package seeder

import (
	"context"

	"skill-hire/internal/database"

	"github.com/google/uuid"
)

// SkillsSeeder fills the reference skill catalog used by job postings,
// employee profiles and quiz generation. Existing names are left untouched.
type SkillsSeeder struct{}

func (SkillsSeeder) Name() string { return "skills" }

var defaultSkills = []string{
	"Go",
	"JavaScript",
	"TypeScript",
	"React",
	"Node.js",
	"Python",
	"Java",
	"SQL",
	"PostgreSQL",
	"Redis",
	"Docker",
	"Kubernetes",
	"AWS",
	"GCP",
	"Git",
	"REST API Design",
	"System Design",
	"Testing",
}

func (SkillsSeeder) Run(ctx context.Context, db database.DB) (int, error) {
	if err := requireColumns(ctx, db, "skills", "id", "name", "created_at"); err != nil {
		return 0, err
	}

	inserted := 0
	err := database.InTx(ctx, db, func(tx database.Tx) error {
		for _, name := range defaultSkills {
			n, err := tx.Exec(ctx,
				`INSERT INTO skills (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
				uuid.New(), name,
			)
			if err != nil {
				return err
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
