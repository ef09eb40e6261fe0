package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/foretime/ancestry/pkg/ancestry/batch"
	"github.com/foretime/ancestry/pkg/ancestry/segment"
	"github.com/foretime/ancestry/pkg/observability"
)

// serveCommand creates the serve command, exposing the batch simplifier
// over HTTP for clients that would rather not shell out to the CLI.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simplifier over HTTP",
		Long: `Serve exposes a single endpoint, POST /simplify, which accepts the same
JSON body as 'ancestrysim simplify' and returns the simplified edge table
and id map. It keeps no state between requests: every call runs the
batch simplifier from scratch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(c.requestLogMiddleware)

	router.Post("/simplify", c.handleSimplify)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	printInfo("Listening on %s", addr)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogMiddleware logs every request through observability's HTTP
// hooks, so the same instrumentation surface used elsewhere in the
// toolchain covers the serve command too.
func (c *CLI) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.Host, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.Host, r.URL.Path, ww.Status(), time.Since(start))
	})
}

func (c *CLI) handleSimplify(w http.ResponseWriter, r *http.Request) {
	var in simplifyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		observability.HTTP().OnError(r.Context(), r.Method, r.Host, r.URL.Path, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records := make([]batch.EdgeRecord, len(in.Records))
	for i, rec := range in.Records {
		descendants := make([]segment.Segment, len(rec.Descendants))
		for j, s := range rec.Descendants {
			descendants[j] = segment.New(s.Node, s.Left, s.Right)
		}
		records[i] = batch.EdgeRecord{Node: rec.Node, BirthTime: rec.BirthTime, Descendants: descendants}
	}

	idmap, simplified, err := batch.Simplify(records, in.Samples, in.NumNodes, in.GenomeLength)
	if err != nil {
		observability.HTTP().OnError(r.Context(), r.Method, r.Host, r.URL.Path, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out := simplifyOutput{IDMap: idmap, Records: make([]edgeRecordJSON, len(simplified))}
	for i, rec := range simplified {
		descendants := make([]segmentJSON, len(rec.Descendants))
		for j, s := range rec.Descendants {
			descendants[j] = segmentJSON{Left: s.Left, Right: s.Right, Node: s.Node}
		}
		out.Records[i] = edgeRecordJSON{Node: rec.Node, BirthTime: rec.BirthTime, Descendants: descendants}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
