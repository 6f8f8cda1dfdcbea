package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"bookstore/internal/response"
	"bookstore/internal/schema"
	"bookstore/internal/storage/books"
	"bookstore/internal/types"
)

const maxBodyBytes = 1 << 20

type bookEnvelope struct {
	Book *types.Book `json:"book"`
}

func Handler(br books.Repository, rr *response.Responder) http.Handler {
	r := chi.NewRouter()

	r.Get("/books", func(w http.ResponseWriter, r *http.Request) {
		rows, err := br.List(r.Context())
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		if rows == nil {
			rows = make([]*types.Book, 0)
		}

		rr.SendJson(w, r.Context(), http.StatusOK, struct {
			Books []*types.Book `json:"books"`
		}{Books: rows})
	})

	r.Get("/books/{isbn}", func(w http.ResponseWriter, r *http.Request) {
		isbn := chi.URLParam(r, "isbn")

		book, err := br.GetByIsbn(r.Context(), isbn)
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		if book == nil {
			notFound(w, r, rr, isbn)
			return
		}

		rr.SendJson(w, r.Context(), http.StatusOK, bookEnvelope{Book: book})
	})

	r.Post("/books", func(w http.ResponseWriter, r *http.Request) {
		fields, ok := decodeAndValidate(w, r, rr, schema.Create)
		if !ok {
			return
		}

		book, err := br.Create(r.Context(), bookOf(fields))
		if errors.Is(err, books.ErrDuplicateIsbn) {
			rr.RespondError(w, r.Context(), http.StatusConflict,
				"Book with isbn '"+fields["isbn"].(string)+"' already exists")
			return
		}
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		rr.SendJson(w, r.Context(), http.StatusCreated, bookEnvelope{Book: book})
	})

	r.Put("/books/{isbn}", func(w http.ResponseWriter, r *http.Request) {
		isbn := chi.URLParam(r, "isbn")

		fields, ok := decodeAndValidate(w, r, rr, schema.Update)
		if !ok {
			return
		}

		book, err := br.Update(r.Context(), isbn, fields)
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		if book == nil {
			notFound(w, r, rr, isbn)
			return
		}

		rr.SendJson(w, r.Context(), http.StatusOK, bookEnvelope{Book: book})
	})

	r.Delete("/books/{isbn}", func(w http.ResponseWriter, r *http.Request) {
		isbn := chi.URLParam(r, "isbn")

		deleted, err := br.Delete(r.Context(), isbn)
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		if !deleted {
			notFound(w, r, rr, isbn)
			return
		}

		rr.SendJson(w, r.Context(), http.StatusOK, struct {
			Message string `json:"message"`
		}{Message: "Book deleted"})
	})

	r.Get("/opds/books", func(w http.ResponseWriter, r *http.Request) {
		rows, err := br.List(r.Context())
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		rr.SendXml(w, r.Context(), opdsAcquisitionType, opdsFeed(r.URL.Path, rows))
	})

	return r
}

func Static(r chi.Router, openApiYaml string) {
	if openApiYaml == "" {
		return
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openApiYaml)
	})
}

func notFound(w http.ResponseWriter, r *http.Request, rr *response.Responder, isbn string) {
	rr.RespondError(w, r.Context(), http.StatusNotFound, "There is no book with isbn '"+isbn+"'")
}

// decodeAndValidate responds with 400 itself and returns false when the body is not
// acceptable for the named schema. Nothing is written to storage in that case.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, rr *response.Responder,
	name schema.Name) (books.Fields, bool) {

	payload, err := schema.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rr.RespondError(w, r.Context(), http.StatusRequestEntityTooLarge,
				"Request body is larger than "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return nil, false
		}

		rr.RespondError(w, r.Context(), http.StatusBadRequest, "Request body is not a valid JSON document: "+err.Error())
		return nil, false
	}

	if violations := schema.Validate(payload, name); len(violations) > 0 {
		rr.RespondError(w, r.Context(), http.StatusBadRequest, strings.Join(violations, "; "))
		return nil, false
	}

	// A payload that passed either schema is an object
	obj := payload.(map[string]any)

	fields := make(books.Fields, len(obj))
	for k, v := range obj {
		if n, ok := v.(json.Number); ok {
			fields[k] = intOf(n)
			continue
		}
		fields[k] = v
	}

	return fields, true
}

// Schema already checked n is an integer in int32 range, but it may be spelled like 1e3
func intOf(n json.Number) int {
	if i, err := n.Int64(); err == nil {
		return int(i)
	}

	f, _ := n.Float64()
	return int(f)
}

func bookOf(fields books.Fields) *types.Book {
	str := func(key string) string {
		s, _ := fields[key].(string)
		return s
	}
	num := func(key string) int {
		i, _ := fields[key].(int)
		return i
	}

	return &types.Book{
		Isbn:      str("isbn"),
		AmazonUrl: str("amazon_url"),
		Author:    str("author"),
		Language:  str("language"),
		Pages:     num("pages"),
		Publisher: str("publisher"),
		Title:     str("title"),
		Year:      num("year"),
	}
}
