package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"arguepulse/models"
)

// StatementSeeder is the part of the statement store seeding needs
type StatementSeeder interface {
	CountStatements(ctx context.Context) (int64, error)
	InsertStatements(ctx context.Context, statements []models.Statement) error
}

// SeedStatements inserts the starter statements when the collection is empty.
// It returns how many statements were inserted.
func SeedStatements(ctx context.Context, seeder StatementSeeder) (int, error) {
	count, err := seeder.CountStatements(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count statements: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	statements := StarterStatements(time.Now().UTC())
	if err := seeder.InsertStatements(ctx, statements); err != nil {
		return 0, err
	}
	log.Printf("Seeded %d starter statements", len(statements))
	return len(statements), nil
}

// StarterStatements returns the campus statements shown on a fresh install,
// backdated a few hours so the New/Hot lane has an order.
func StarterStatements(now time.Time) []models.Statement {
	hoursAgo := func(h int) time.Time { return now.Add(-time.Duration(h) * time.Hour) }

	return []models.Statement{
		{
			Text:      "Universities should publish all course materials online for free.",
			CreatedAt: hoursAgo(4),
			Quiz: []models.QuizQuestion{
				{
					ID:       "q1",
					Question: "What does the statement propose?",
					Choices: []string{
						"Charge higher tuition for online classes",
						"Publish all course materials online at no cost",
						"Ban online courses",
						"Paywall lecture recordings for alumni only",
					},
					AnswerIndex: 1,
				},
				{
					ID:       "q2",
					Question: "Which outcome most closely aligns with the proposal?",
					Choices: []string{
						"Wider access to learning resources",
						"Less transparency for students",
						"Fewer open educational resources",
						"Higher textbook prices",
					},
					AnswerIndex: 0,
				},
			},
			Summary: &models.Summary{
				ForReasons:     []string{"Equity/access", "Recruitment/branding", "Open knowledge culture"},
				AgainstReasons: []string{"IP/quality control", "Instructor workload", "Publisher contracts"},
			},
		},
		{
			Text:      "Campus parking should be replaced with green space and microtransit.",
			CreatedAt: hoursAgo(2),
			Quiz: []models.QuizQuestion{
				{
					ID:       "q1",
					Question: "What is the main trade-off described?",
					Choices: []string{
						"Parking revenue vs cafeteria revenue",
						"Parking availability vs green space + microtransit",
						"Dorm capacity vs faculty offices",
						"Stadium seating vs tuition",
					},
					AnswerIndex: 1,
				},
				{
					ID:       "q2",
					Question: "Which is NOT a likely effect?",
					Choices: []string{
						"More trees and pedestrian areas",
						"Less on-campus car storage",
						"More last-mile shuttle options",
						"Lower greenhouse gas per rider car trip",
					},
					AnswerIndex: 3,
				},
			},
			Summary: &models.Summary{
				ForReasons:     []string{"Sustainability", "Walkability & safety", "Campus aesthetics"},
				AgainstReasons: []string{"Commuter burden", "Accessibility gaps", "Transition cost"},
			},
		},
		{
			Text:      "Professors should be required to publish grading rubrics before assignments.",
			CreatedAt: hoursAgo(1),
			Quiz: []models.QuizQuestion{
				{
					ID:          "q1",
					Question:    "What must be published under the proposal?",
					Choices:     []string{"Lecture slides", "Grading rubrics", "Class recordings", "Exam keys"},
					AnswerIndex: 1,
				},
				{
					ID:       "q2",
					Question: "A likely benefit would be:",
					Choices: []string{
						"More arbitrary grading",
						"Less transparency",
						"Clearer expectations for students",
						"Shorter assignments",
					},
					AnswerIndex: 2,
				},
			},
			Summary: &models.Summary{
				ForReasons:     []string{"Transparency", "Fairness", "Better learning targets"},
				AgainstReasons: []string{"Reduced instructor flexibility", "Time cost", "Rubric gaming"},
			},
		},
	}
}
