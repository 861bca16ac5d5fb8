package result

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/eiken/internal/database"
)

// DBRepository implements Repository on MySQL or SQLite.
type DBRepository struct {
	db *sqlx.DB
}

func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

type answerRow struct {
	ResultID string `db:"result_id"`
	Position int    `db:"position"`
	AnswerRecord
}

func (r *DBRepository) Save(ctx context.Context, result BatchResult) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO batch_results (id, completed_at, questions_file, batch_number, score, total) VALUES (?, ?, ?, ?, ?, ?)",
			result.ID, result.CompletedAt.UTC(), result.QuestionsFile, result.BatchNumber, result.Score, result.Total,
		); err != nil {
			return fmt.Errorf("insert batch result: %w", err)
		}
		if len(result.Answers) == 0 {
			return nil
		}

		columns := []string{"result_id", "position", "prompt", "choice", "correct_choice", "is_correct"}
		query := database.BuildMultiRowInsert("batch_answers", columns, len(result.Answers))
		args := make([]any, 0, len(columns)*len(result.Answers))
		for i, a := range result.Answers {
			args = append(args, result.ID, i, a.Prompt, a.Choice, a.CorrectChoice, a.Correct)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert batch answers: %w", err)
		}
		return nil
	})
}

func (r *DBRepository) FindAll(ctx context.Context) ([]BatchResult, error) {
	var results []BatchResult
	if err := r.db.SelectContext(ctx, &results,
		"SELECT id, completed_at, questions_file, batch_number, score, total FROM batch_results ORDER BY completed_at, id",
	); err != nil {
		return nil, fmt.Errorf("load batch results: %w", err)
	}
	if len(results) == 0 {
		return results, nil
	}

	var rows []answerRow
	if err := r.db.SelectContext(ctx, &rows,
		"SELECT result_id, position, prompt, choice, correct_choice, is_correct FROM batch_answers ORDER BY result_id, position",
	); err != nil {
		return nil, fmt.Errorf("load batch answers: %w", err)
	}

	answers := make(map[string][]AnswerRecord)
	for _, row := range rows {
		answers[row.ResultID] = append(answers[row.ResultID], row.AnswerRecord)
	}
	for i := range results {
		results[i].CompletedAt = results[i].CompletedAt.UTC()
		results[i].Answers = answers[results[i].ID]
	}
	return results, nil
}
