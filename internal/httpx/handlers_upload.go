package httpx

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// ---- POST /upload: multipart image, returns the stored URL ----
func HandleUpload(app *AppCtx) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, 20<<20) // 20MB
		if err := r.ParseMultipartForm(25 << 20); err != nil {
			http.Error(w, "parse form: "+err.Error(), http.StatusBadRequest)
			return
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "form file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		head := make([]byte, 512)
		n, _ := io.ReadFull(file, head)
		head = head[:n]
		mtype := http.DetectContentType(head)

		ext := ""
		switch mtype {
		case "image/jpeg":
			ext = ".jpg"
		case "image/png":
			ext = ".png"
		case "image/webp":
			ext = ".webp"
		case "image/gif":
			ext = ".gif"
		default:
			if e := strings.ToLower(filepath.Ext(hdr.Filename)); map[string]bool{
				".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
			}[e] {
				ext = e
			}
			if ext == "" {
				http.Error(w, "unsupported image type: "+mtype, http.StatusBadRequest)
				return
			}
		}

		ts := time.Now().Format("20060102T150405.000")
		base := strings.TrimSuffix(hdr.Filename, filepath.Ext(hdr.Filename))
		if base == "" {
			base = "img"
		}
		base = strings.Map(func(r rune) rune {
			if r == '-' || r == '_' || r == '.' || r == ' ' ||
				(r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				return r
			}
			return '-'
		}, base)
		filename := ts + "_" + base + ext

		ctype := mime.TypeByExtension(ext)
		url, err := app.Uploads.Upload(r.Context(), filename, ctype, io.MultiReader(bytes.NewReader(head), file))
		if err != nil {
			http.Error(w, "store file: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	}
}
