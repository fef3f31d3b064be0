package chi

import (
	"net/http"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	domusage "github.com/kailas-cloud/realitycheck/internal/domain/usage"
	analyzeuc "github.com/kailas-cloud/realitycheck/internal/usecase/analyze"
	healthuc "github.com/kailas-cloud/realitycheck/internal/usecase/health"
)

// Analyze handles POST /v1/analyze. It accepts JSON {"text"} or a multipart
// form with a "text" field and/or an image "file".
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var in analyzeuc.Input
	if isMultipart(r) {
		if err := s.parseMultipart(w, r); err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		in.Text = r.FormValue("text")
		f, ok, err := formFile(r, "file")
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		if ok {
			in.Image = &f
		}
	} else {
		var req textRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		in.Text = req.Text
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	report, err := s.svc.Analyze.Analyze(ctx, in)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, reportToResponse(report))
}

// Classify handles POST /v1/classify.
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.svc.Classify.Classify(ctx, req.Text)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, classificationToResponse(res))
}

// Retrieve handles POST /v1/retrieve.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	k := s.opts.DefaultK
	if req.K != nil {
		if *req.K <= 0 || *req.K > maxRetrieveK {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "k must be between 1 and 50")
			return
		}
		k = *req.K
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.svc.Retrieve.Retrieve(ctx, req.Text, k)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, retrieveResponse{Results: articlesToResponse(results)})
}

// UploadNotes handles POST /v1/notes (multipart "file").
func (s *Server) UploadNotes(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "multipart/form-data with a file part is required")
		return
	}
	if err := s.parseMultipart(w, r); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	f, ok, err := formFile(r, "file")
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "File is required.")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	sum, err := s.svc.Notes.Upload(ctx, f)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, uploadResponse{
		Status:        "success",
		CorpusID:      sum.CorpusID,
		ChunksCreated: sum.Entries,
	})
}

// Ask handles POST /v1/notes/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	ans, err := s.svc.Ask.Ask(ctx, req.Question)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, answerToResponse(ans))
}

// Generate handles POST /v1/notes/generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	out, err := s.svc.Generate.Generate(ctx, req.Mode)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, generateResponse{Mode: string(out.Mode), Data: out.Payload()})
}

// GetUsage handles GET /v1/usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, ok := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if !ok {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "period must be day or month")
		return
	}
	writeJSON(w, http.StatusOK, usageToResponse(s.svc.Usage.GetReport(r.Context(), period)))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthToResponse(report))
}
