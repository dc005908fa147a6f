package server

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

//go:embed static/*
var staticFiles embed.FS

const (
	imageCacheControl   = "public, max-age=3600, must-revalidate"
	assetCacheControl   = "public, max-age=300, must-revalidate"
	defaultCacheControl = "no-cache"
)

// staticAsset is an embedded file ready to serve.
type staticAsset struct {
	data         []byte
	contentType  string
	etag         string
	cacheControl string
}

// staticAssets reads and fingerprints every embedded file on first use, keyed
// by its path below static/ (e.g. "css/app.css").
var staticAssets = sync.OnceValues(func() (map[string]staticAsset, error) {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static files: %w", err)
	}

	assets := make(map[string]staticAsset)
	err = fs.WalkDir(sub, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(sub, name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		sum := sha256.Sum256(data)
		assets[name] = staticAsset{
			data:         data,
			contentType:  contentTypeOf(name, data),
			etag:         `"` + hex.EncodeToString(sum[:8]) + `"`,
			cacheControl: cacheControlOf(name),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
})

func contentTypeOf(name string, data []byte) string {
	ctype := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	if strings.HasPrefix(ctype, "text/") && !strings.Contains(strings.ToLower(ctype), "charset=") {
		ctype += "; charset=utf-8"
	}
	return ctype
}

// cacheControlOf keeps images for an hour and stylesheets, scripts and fonts
// for five minutes. Anything else is revalidated on every use.
func cacheControlOf(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp":
		return imageCacheControl
	case ".css", ".js", ".woff", ".woff2", ".ttf":
		return assetCacheControl
	default:
		return defaultCacheControl
	}
}

// StaticFileHandler serves the embedded file named by the request path. A
// browser holding the current ETag gets 304 Not Modified.
func (s *Server) StaticFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assets, err := staticAssets()
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("static files unavailable")
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return
		}

		name := strings.TrimPrefix(r.URL.Path, "/")
		asset, ok := assets[name]
		if !ok {
			logError(r.Method, name, "no such static file")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", asset.contentType)
		w.Header().Set("Cache-Control", asset.cacheControl)
		w.Header().Set("ETag", asset.etag)
		http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(asset.data))
	}
}
