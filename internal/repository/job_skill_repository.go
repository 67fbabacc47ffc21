package repository

import (
	"context"

	"skill-hire/internal/database"
	"skill-hire/internal/domain/skill"

	"github.com/google/uuid"
)

type JobSkillRepository interface {
	FindByJobIDs(ctx context.Context, jobIDs []uuid.UUID) (map[uuid.UUID][]skill.JobSkill, error)
}

type PostgresJobSkillRepository struct {
	db database.DB
}

func NewPostgresJobSkillRepository(db database.DB) *PostgresJobSkillRepository {
	return &PostgresJobSkillRepository{db: db}
}

func (r *PostgresJobSkillRepository) FindByJobIDs(ctx context.Context, jobIDs []uuid.UUID) (map[uuid.UUID][]skill.JobSkill, error) {
	out := make(map[uuid.UUID][]skill.JobSkill, len(jobIDs))
	if len(jobIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT js.job_id, js.skill_id, s.name, js.importance
		 FROM job_skills js
		 JOIN skills s ON s.id = js.skill_id
		 WHERE js.job_id = ANY($1)
		 ORDER BY js.importance DESC, s.name ASC`,
		jobIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it skill.JobSkill
		if err := rows.Scan(&it.JobID, &it.SkillID, &it.SkillName, &it.Importance); err != nil {
			return nil, err
		}
		out[it.JobID] = append(out[it.JobID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
