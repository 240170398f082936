package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"jd-match/internal/extract"
	"jd-match/internal/matching"
	"jd-match/internal/storage"
	"jd-match/internal/workspace"
)

// Backfills candidate details (name, experience, gaps, projects) for
// resumes that were stored before extraction ran over them. Dry-run by
// default.
func main() {
	var dryRun bool
	var limit int
	flag.BoolVar(&dryRun, "dry-run", true, "If true, do not persist updates; just print changes")
	flag.IntVar(&limit, "limit", 200, "Max number of resumes to process in one run")
	flag.Parse()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	extractorURL := os.Getenv("EXTRACTOR_URL")
	if extractorURL == "" {
		log.Fatal("EXTRACTOR_URL is required")
	}

	log.Printf("Connecting to DB...")
	db, err := storage.NewDB(dbURL)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer db.Close()

	client := extract.NewClient(extractorURL, os.Getenv("EXTRACTOR_API_KEY"), 60*time.Second)

	ctx := context.Background()

	resumes, err := db.ListResumes(ctx)
	if err != nil {
		log.Fatalf("failed to list resumes: %v", err)
	}

	processed := 0
	updated := 0
	for _, rec := range resumes {
		if processed >= limit {
			break
		}
		if rec.CandidateName != "" && len(rec.Skills) > 0 {
			continue
		}
		if rec.Text == "" {
			log.Printf("skip %s: no stored text", rec.Name)
			continue
		}
		processed++

		res, err := client.Extract(ctx, rec.Text, extract.KindResume)
		if err != nil {
			log.Printf("extraction failed for %s: %v", rec.Name, err)
			continue
		}

		log.Printf("%s: name=%q experience=%.1f skills=%d",
			rec.Name, res.CandidateName, res.CandidateExperience, len(res.Skills))

		if dryRun {
			continue
		}

		if res.CandidateName != "" {
			rec.CandidateName = res.CandidateName
		}
		if res.CandidateExperience > 0 {
			rec.CandidateExperience = res.CandidateExperience
		}
		if len(res.Skills) > 0 {
			rec.Skills = res.Skills
		}
		if res.ParsedDetails != nil {
			if res.ParsedDetails.EmploymentGaps != nil {
				rec.EmploymentGaps = workspace.EmploymentGaps{
					HasGap:         res.ParsedDetails.EmploymentGaps.HasGap,
					TotalGapMonths: res.ParsedDetails.EmploymentGaps.TotalGapMonths,
				}
			}
			if len(res.ParsedDetails.Projects) > 0 {
				projects := make([]matching.Project, 0, len(res.ParsedDetails.Projects))
				for _, p := range res.ParsedDetails.Projects {
					projects = append(projects, matching.Project{
						Name:         p.Name,
						Description:  p.Description,
						Technologies: p.Technologies,
					})
				}
				rec.Projects = projects
			}
		}
		if err := db.SaveResume(ctx, rec); err != nil {
			log.Printf("failed to save %s: %v", rec.Name, err)
			continue
		}
		updated++
	}

	log.Printf("done: processed=%d updated=%d dry-run=%v", processed, updated, dryRun)
}
