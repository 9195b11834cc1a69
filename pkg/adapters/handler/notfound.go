package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

const notFoundPage = `<!DOCTYPE html>
<html>
  <head>
    <title>Link Not Found</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
      body { font-family: system-ui, -apple-system, sans-serif; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0; background: #f8fafc; color: #334155; }
      .container { text-align: center; max-width: 400px; padding: 2rem; }
      h1 { font-size: 2rem; margin-bottom: 1rem; color: #ef4444; }
      p { margin-bottom: 1.5rem; line-height: 1.6; }
    </style>
  </head>
  <body>
    <div class="container">
      <h1>Link Not Found</h1>
      <p>The short link you're looking for doesn't exist or has expired.</p>
    </div>
  </body>
</html>
`

func renderNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if _, err := w.Write([]byte(notFoundPage)); err != nil {
		log.Error().Err(err).Msg("Failed to write not found page")
	}
}
