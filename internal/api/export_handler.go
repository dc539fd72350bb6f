package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/voxgrep/voxgrep/internal/export"
	"github.com/voxgrep/voxgrep/internal/render"
	"github.com/voxgrep/voxgrep/internal/search"
	"github.com/voxgrep/voxgrep/internal/supercut"
)

// searchHandler runs a query and returns the finalized clip list without
// rendering anything.
func searchHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := queryFromParams(r.URL.Query())
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		plan, err := runSearch(r, cfg, q)
		if err != nil {
			writeSearchError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, SearchResponse{
			Matches:       plan.Clips(),
			TotalClips:    plan.TotalClips,
			TotalDuration: plan.TotalDuration,
		})
	}
}

// ngramsHandler tallies the most common n-grams across the corpus, a quick
// way to find phrases worth searching for.
func ngramsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := 1
		if v := r.URL.Query().Get("n"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 1 {
				WriteError(w, http.StatusBadRequest, "invalid n", "BAD_REQUEST")
				return
			}
			n = parsed
		}
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 1 {
				WriteError(w, http.StatusBadRequest, "invalid limit", "BAD_REQUEST")
				return
			}
			limit = parsed
		}

		corpus, err := cfg.Library.Corpus(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to load corpus", "INTERNAL_ERROR")
			return
		}

		grams := search.CountNGrams(corpus, n)
		if len(grams) > limit {
			grams = grams[:limit]
		}
		WriteJSON(w, http.StatusOK, NGramsResponse{N: n, Grams: grams})
	}
}

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Query.Pattern == "" {
			WriteError(w, http.StatusBadRequest, "query pattern is required", "BAD_REQUEST")
			return
		}
		if req.Query.Type == "" {
			req.Query.Type = search.TypeSentence
		}

		name := export.SanitizeName(req.Name, 120)
		if name == "" {
			name = "supercut"
		}

		switch req.Format {
		case "edl", "m3u", "mpv", "vtt", "xml", "preview":
			serveTextExport(w, r, cfg, req, name)
		case "", "mp4", "mp3", "webm", "mkv", "clips":
			enqueueMediaExport(w, r, cfg, req, name)
		default:
			WriteError(w, http.StatusBadRequest, "unsupported format: "+req.Format, "BAD_REQUEST")
		}
	}
}

func serveTextExport(w http.ResponseWriter, r *http.Request, cfg ServerConfig, req ExportRequest, name string) {
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = cfg.ExportDir
		os.MkdirAll(outputDir, 0o755)
	}
	if err := export.ValidateOutputDir(outputDir); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}

	plan, err := runSearch(r, cfg, req.Query)
	if err != nil {
		writeSearchError(w, err)
		return
	}
	if plan.TotalClips == 0 {
		WriteError(w, http.StatusUnprocessableEntity, "no clips matched the query", "NO_RESULTS")
		return
	}

	frameRate := req.FrameRate
	if frameRate <= 0 {
		frameRate = cfg.FrameRate
	}

	var content, ext string
	switch req.Format {
	case "edl":
		content, ext = export.GenerateEDL(plan, name, frameRate), ".edl"
	case "m3u":
		content, ext = export.GenerateM3U(plan), ".m3u"
	case "mpv":
		content, ext = export.GenerateMPVEDL(plan), ".mpv.edl"
	case "vtt":
		content, ext = export.GenerateVTT(plan), ".vtt"
	case "preview":
		content, ext = export.GeneratePreview(plan), ".txt"
	case "xml":
		xml, err := export.GenerateTimelineXML(plan, name)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		content, ext = xml, ".xml"
	}

	outputPath := filepath.Join(outputDir, name+ext)
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
		return
	}

	WriteJSON(w, http.StatusOK, ExportResponse{
		Status:     "ok",
		Format:     req.Format,
		OutputPath: outputPath,
		ClipCount:  plan.TotalClips,
	})
}

func enqueueMediaExport(w http.ResponseWriter, r *http.Request, cfg ServerConfig, req ExportRequest, name string) {
	format := req.Format
	if format == "" {
		format = "mp4"
	}

	payload, err := json.Marshal(render.ExportJobPayload{
		Query:  req.Query,
		Format: format,
		Name:   name,
	})
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return
	}

	job, err := cfg.Library.EnqueueExport(r.Context(), string(payload))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return
	}

	WriteJSON(w, http.StatusAccepted, ExportResponse{
		Status: "queued",
		Format: format,
		JobID:  job.ID,
	})
}

// runSearch executes the full pipeline: corpus, match, finalize, assemble.
// Each request gets its own engine split so concurrent handlers never share
// a random source.
func runSearch(r *http.Request, cfg ServerConfig, q search.Query) (*supercut.ExportPlan, error) {
	ctx := r.Context()
	q = applyQueryDefaults(q)
	engine := cfg.Engine.Split()

	corpus, err := cfg.Library.Corpus(ctx)
	if err != nil {
		return nil, err
	}

	matches, err := engine.Find(corpus, q)
	if err != nil {
		return nil, err
	}

	// Semantic matches arrive best-first; truncating here keeps the top
	// scores instead of the timeline-earliest clips.
	if q.Type == search.TypeSemantic && q.MaxClips > 0 && len(matches) > q.MaxClips {
		matches = matches[:q.MaxClips]
	}

	durations, err := cfg.Library.Durations(ctx)
	if err != nil {
		return nil, err
	}

	plan := supercut.Finalize(matches, q, durations, engine.Rand())
	return supercut.Assemble(plan, cfg.BatchSize)
}

// applyQueryDefaults pads word-level clips when the caller set no padding.
func applyQueryDefaults(q search.Query) search.Query {
	if (q.Type == search.TypeFragment || q.Type == search.TypeMash) &&
		q.PaddingStart == 0 && q.PaddingEnd == 0 {
		q.PaddingStart = search.DefaultPadding
		q.PaddingEnd = search.DefaultPadding
	}
	return q
}

func writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, search.ErrInvalidSearchType):
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_SEARCH_TYPE")
	case errors.Is(err, search.ErrInvalidPattern):
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_PATTERN")
	case errors.Is(err, search.ErrSemanticUnavailable):
		WriteError(w, http.StatusBadRequest, err.Error(), "SEMANTIC_UNAVAILABLE")
	case errors.Is(err, search.ErrNoWordTimestamps):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "NO_WORD_TIMESTAMPS")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "SEARCH_ERROR")
	}
}

func queryFromParams(params url.Values) (search.Query, error) {
	q := search.Query{
		Pattern: params.Get("pattern"),
		Type:    search.Type(params.Get("type")),
	}
	if q.Type == "" {
		q.Type = search.TypeSentence
	}

	var err error
	if v := params.Get("max_clips"); v != "" {
		if q.MaxClips, err = strconv.Atoi(v); err != nil {
			return q, errors.New("invalid max_clips")
		}
	}
	if v := params.Get("randomize"); v != "" {
		q.Randomize = v == "true" || v == "1"
	}
	if v := params.Get("case_sensitive"); v != "" {
		q.CaseSensitive = v == "true" || v == "1"
	}
	if v := params.Get("padding_start"); v != "" {
		if q.PaddingStart, err = strconv.ParseFloat(v, 64); err != nil {
			return q, errors.New("invalid padding_start")
		}
	}
	if v := params.Get("padding_end"); v != "" {
		if q.PaddingEnd, err = strconv.ParseFloat(v, 64); err != nil {
			return q, errors.New("invalid padding_end")
		}
	}
	if v := params.Get("resync"); v != "" {
		if q.ResyncOffset, err = strconv.ParseFloat(v, 64); err != nil {
			return q, errors.New("invalid resync")
		}
	}
	if v := params.Get("threshold"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, errors.New("invalid threshold")
		}
		q.SemanticThreshold = &threshold
	}
	return q, nil
}
