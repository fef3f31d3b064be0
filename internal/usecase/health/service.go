package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status  Status
	Checks  map[string]CheckResult
	Entries map[string]int
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding ProviderChecker
	evidence  CorpusReader
	notes     CorpusReader
}

// New creates a Service. db and embedding can be nil.
func New(db DBPinger, embedding ProviderChecker, evidence, notes CorpusReader) *Service {
	return &Service{db: db, embedding: embedding, evidence: evidence, notes: notes}
}

// Check runs health checks against all components. An empty notes corpus is
// normal before the first upload and does not degrade the status.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	entries := make(map[string]int)

	if s.db != nil {
		checks["database"] = resultOf(s.db.Ping(ctx))
	}
	if s.embedding != nil {
		checks["embedding"] = resultOf(s.embedding.HealthCheck(ctx))
	}

	evidence := s.evidence.Load()
	entries["evidence"] = evidence.Len()
	if evidence.Len() > 0 {
		checks["evidence_index"] = CheckOK
	} else {
		checks["evidence_index"] = CheckError
	}
	entries["notes"] = s.notes.Load().Len()

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, Entries: entries}
}

func resultOf(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
