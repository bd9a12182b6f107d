package httpx

import "net/http"

// Stage is one step of a request pipeline. It returns the request to pass on, usually with
// values added to its context, or an error that ends the pipeline.
type Stage func(w http.ResponseWriter, r *http.Request) (*http.Request, error)

// HandlerFunc is a business handler that reports failures instead of writing them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Pipeline runs stages in order, then a handler. The first error is sent to the funnel.
type Pipeline struct {
	funnel *ErrorFunnel
	stages []Stage
}

// NewPipeline creates a pipeline of stages reporting to funnel.
func NewPipeline(funnel *ErrorFunnel, stages ...Stage) *Pipeline {
	return &Pipeline{funnel: funnel, stages: stages}
}

// With returns a new pipeline with extra stages appended.
func (p *Pipeline) With(stages ...Stage) *Pipeline {
	all := make([]Stage, 0, len(p.stages)+len(stages))
	all = append(all, p.stages...)
	all = append(all, stages...)
	return &Pipeline{funnel: p.funnel, stages: all}
}

// Then terminates the pipeline with h.
func (p *Pipeline) Then(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, stage := range p.stages {
			next, err := stage(w, r)
			if err != nil {
				p.funnel.Handle(w, r, err)
				return
			}
			if next != nil {
				r = next
			}
		}
		if err := h(w, r); err != nil {
			p.funnel.Handle(w, r, err)
		}
	}
}
