package domfinder

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/foomo/domfinder/vo"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Service exposes one compiled Finder over http. POST a html body to
// extract it, or GET with a url query parameter to fetch and extract a
// remote document.
type Service struct {
	finder            *Finder
	agent             string
	summaryVec        *prometheus.SummaryVec
	totalCounter      prometheus.Counter
	counterVecOutcome *prometheus.CounterVec
}

func NewService(finder *Finder, agent string) *Service {
	if agent == "" {
		agent = DefaultAgent
	}
	summaryVec, totalCounter, counterVecOutcome := setupMetrics()
	return &Service{
		finder:            finder,
		agent:             agent,
		summaryVec:        summaryVec,
		totalCounter:      totalCounter,
		counterVecOutcome: counterVecOutcome,
	}
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	switch r.Method {
	case http.MethodPost:
		bodyBytes, errRead := io.ReadAll(r.Body)
		if errRead != nil {
			s.fail(w, http.StatusBadRequest, errRead.Error())
			return
		}
		value, errParse := s.finder.Parse(string(bodyBytes))
		if errParse != nil {
			s.fail(w, http.StatusUnprocessableEntity, errParse.Error())
			return
		}
		s.respond(w, value, start)
	case http.MethodGet:
		targetURL := r.URL.Query().Get("url")
		if targetURL == "" {
			s.fail(w, http.StatusBadRequest, "missing url parameter")
			return
		}
		doc, errFetch := FetchDocument(targetURL, s.agent)
		if errFetch != nil {
			s.fail(w, http.StatusBadGateway, errFetch.Error())
			return
		}
		s.respond(w, s.finder.ParseDocument(doc), start)
	default:
		s.fail(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Service) respond(w http.ResponseWriter, value vo.Value, start time.Time) {
	s.summaryVec.WithLabelValues(s.finder.name).Observe(time.Since(start).Seconds())
	s.totalCounter.Inc()
	s.counterVecOutcome.WithLabelValues(s.finder.name, outcomeOK).Inc()
	w.Header().Set("Content-Type", "application/json")
	errEncode := json.NewEncoder(w).Encode(value)
	if errEncode != nil {
		http.Error(w, errEncode.Error(), http.StatusInternalServerError)
	}
}

func (s *Service) fail(w http.ResponseWriter, code int, msg string) {
	s.totalCounter.Inc()
	s.counterVecOutcome.WithLabelValues(s.finder.name, outcomeError).Inc()
	http.Error(w, msg, code)
}
