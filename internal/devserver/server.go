// Package devserver serves the form-testing pages used to exercise form
// submission from a terminal session.
package devserver

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"iviweb/internal/pages"
	"iviweb/internal/system"
)

const noData = "Error! No form data was received."

type Server struct {
	Addr string
	// ContentDir is served under /pages when set.
	ContentDir string
}

type field struct {
	Key   string
	Value string
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() (*gin.Engine, error) {
	tmpl, err := template.ParseFS(pages.Templates, "*.html")
	if err != nil {
		return nil, err
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	r.GET("/", func(c *gin.Context) {
		system.Logger.Info("serving test form")
		c.HTML(http.StatusOK, "index.html", gin.H{"Action": "/post_data"})
	})
	r.POST("/post_data", postData)
	r.GET("/display_data", displayData)
	r.POST("/display_data", displayData)
	if s.ContentDir != "" {
		r.StaticFS("/pages", gin.Dir(s.ContentDir, false))
	}
	return r, nil
}

func postData(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	form := c.Request.PostForm
	system.Logger.Debug("received posted form", "fields", len(form))
	if len(form) == 0 {
		c.String(http.StatusOK, noData)
		return
	}
	c.Redirect(http.StatusFound, "/display_data?"+form.Encode())
}

func displayData(c *gin.Context) {
	fields := sortedFields(c.Request.URL.Query())
	if len(fields) == 0 {
		system.Logger.Info("display requested without data")
		c.String(http.StatusOK, noData)
		return
	}
	c.HTML(http.StatusOK, "results.html", gin.H{"Fields": fields, "Back": "/"})
}

func sortedFields(v url.Values) []field {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []field
	for _, k := range keys {
		for _, val := range v[k] {
			out = append(out, field{Key: k, Value: val})
		}
	}
	return out
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	r, err := s.Router()
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: s.Addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	system.Logger.Info("dev server listening", "addr", s.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
