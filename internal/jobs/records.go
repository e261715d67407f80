package jobs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

type Records struct {
	Items []*Record
}

type ExcludedRecords struct {
	Items []*ExcludedRecord
}

type ExcludedRecord struct {
	ID         string
	URL        string
	Company    string
	Title      string
	ExcludedAt time.Time
	Actor      string `json:"actor,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

const (
	ExcludeActorUser = "user"
	ExcludeActorAI   = "ai"
)

func (r *Records) Len() int {
	return len(r.Items)
}

// Exclude removes every record whose field matches one of targets (case-insensitive)
// and returns the labels of removed records. Order of the remaining records is preserved.
func (r *Records) Exclude(name string, targets []string) []string {
	set := make(map[string]bool, len(targets))
	for _, target := range targets {
		target = strings.ToLower(strings.TrimSpace(target))
		if target != "" {
			set[target] = true
		}
	}

	var excluded []string
	kept := r.Items[:0]
	for _, rec := range r.Items {
		if set[strings.ToLower(rec.GetStringField(name))] {
			excluded = append(excluded, rec.Label())
			continue
		}
		kept = append(kept, rec)
	}
	r.Items = kept
	return excluded
}

// DedupKey identifies a posting by its normalized title, company and location.
func DedupKey(rec *Record) string {
	norm := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	sum := sha256.Sum256([]byte(norm(rec.Title) + "|" + norm(rec.Company) + "|" + norm(rec.Location)))
	return hex.EncodeToString(sum[:16])
}

// Deduplicate keeps the first record for every non-empty URL and every dedup key.
// The key only identifies a posting when its company or location is known.
// Records known by title alone are compared by key only when neither has a URL.
// It returns the labels of dropped duplicates.
func (r *Records) Deduplicate() []string {
	seenKeys := make(map[string]bool, len(r.Items))
	seenWeakKeys := make(map[string]bool, len(r.Items))
	seenURLs := make(map[string]bool, len(r.Items))

	var dropped []string
	kept := r.Items[:0]
	for _, rec := range r.Items {
		key := DedupKey(rec)
		url := strings.ToLower(strings.TrimSpace(rec.URL))
		identified := strings.TrimSpace(rec.Company) != "" || strings.TrimSpace(rec.Location) != ""

		duplicate := url != "" && seenURLs[url]
		switch {
		case identified:
			duplicate = duplicate || seenKeys[key]
		case url == "":
			duplicate = duplicate || seenWeakKeys[key]
		}
		if duplicate {
			dropped = append(dropped, rec.Label())
			continue
		}

		switch {
		case identified:
			seenKeys[key] = true
		case url == "":
			seenWeakKeys[key] = true
		}
		if url != "" {
			seenURLs[url] = true
		}
		kept = append(kept, rec)
	}
	r.Items = kept
	return dropped
}

// SortByScore orders records by final score, highest first. Records without an
// assessment go last. The sort is stable so ties keep their input order.
func (r *Records) SortByScore() {
	sort.SliceStable(r.Items, func(i, j int) bool {
		a, b := r.Items[i].Assessment, r.Items[j].Assessment
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.FinalScore > b.FinalScore
		}
	})
}

func (r *Records) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, rec := range r.Items {
		key := rec.Company
		if key == "" {
			key = "(unknown company)"
		}

		entry := map[string]string{
			"title":    rec.Title,
			"url":      rec.URL,
			"location": rec.Location,
			"salary":   formatSalary(rec.SalaryMin, rec.SalaryMax),
			"remote":   rec.Remote.String(),
			"source":   rec.Source,
		}

		if rec.Assessment != nil {
			entry["score"] = fmt.Sprintf("%.2f", rec.Assessment.FinalScore)
			entry["passed"] = fmt.Sprintf("%t", rec.Assessment.Passed)
			entry["reasons"] = strings.Join(rec.Assessment.Reasons, "; ")
		}

		if rec.Review != nil {
			if rec.Review.Error != "" {
				entry["ai_error"] = rec.Review.Error
			} else {
				entry["ai_fit"] = fmt.Sprintf("%t", rec.Review.Fit)
				entry["ai_score"] = fmt.Sprintf("%.2f", rec.Review.Score)
				entry["ai_reason"] = rec.Review.Reason
			}
		}

		report[key] = append(report[key], entry)
	}
	return report
}

func formatSalary(lo, hi Amount) string {
	switch {
	case lo.Known && hi.Known:
		return fmt.Sprintf("%.0f-%.0f", lo.Value, hi.Value)
	case lo.Known:
		return fmt.Sprintf("%.0f+", lo.Value)
	case hi.Known:
		return fmt.Sprintf("up to %.0f", hi.Value)
	default:
		return "unknown"
	}
}

func (r *Records) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (r *Records) ToExcluded(actor, reason string) *ExcludedRecords {
	excluded := &ExcludedRecords{}
	for _, rec := range r.Items {
		excluded.Items = append(excluded.Items, &ExcludedRecord{
			ID:         rec.ID,
			URL:        rec.URL,
			Company:    rec.Company,
			Title:      rec.Title,
			ExcludedAt: time.Now().UTC(),
			Actor:      actor,
			Reason:     reason,
		})
	}
	return excluded
}

// GetExcludedFromFile reads an exclude file. A missing or empty file yields an empty list.
func GetExcludedFromFile(path string) (*ExcludedRecords, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedRecords{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedRecords{}, nil
	}

	var excluded ExcludedRecords
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedRecords) Append(s *ExcludedRecords) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedRecords) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, rec := range e.Items {
		if rec.ID != "" {
			ids = append(ids, rec.ID)
		}
	}
	return ids
}

func (e *ExcludedRecords) URLs() []string {
	urls := make([]string, 0, len(e.Items))
	for _, rec := range e.Items {
		if rec.URL != "" {
			urls = append(urls, rec.URL)
		}
	}
	return urls
}

func (e *ExcludedRecords) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
