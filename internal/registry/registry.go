// Package registry implements the format registry (spec §4.3): it drives
// handler initialization, flattens declared formats into a dense option
// list, and provides extension/MIME lookup plus cache persistence.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nervalabs/routecore/internal/apperrors"
	"github.com/nervalabs/routecore/internal/handler"
	"github.com/nervalabs/routecore/internal/mimenorm"
)

// Option is a (handler, format, dense index) triple used for UI binding and
// lookup. The index is not semantically meaningful to the core.
type Option struct {
	Handler handler.Handler
	Format  handler.FormatDescriptor
	Index   int
}

// CacheEntry is one handler's declared formats, as persisted.
type CacheEntry struct {
	HandlerName string                      `json:"handlerName"`
	Formats     []handler.FormatDescriptor `json:"formats"`
}

// Cache is the full persisted format cache, in handler declaration order.
type Cache []CacheEntry

// cacheEnvelope supports the `{ "cache": [...] }` variant shape accepted on
// load, per spec §6.
type cacheEnvelope struct {
	CacheField Cache `json:"cache"`
}

// DecodeCache parses either a bare JSON array of CacheEntry or the
// `{"cache": [...]}` envelope.
func DecodeCache(data []byte) (Cache, error) {
	var bare Cache
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}
	var wrapped cacheEnvelope
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("registry: decode cache: %w", err)
	}
	return wrapped.CacheField, nil
}

// Registry flattens (handler, format) options from a supplied per-handler
// format list and provides lookup by extension and by normalized MIME.
type Registry struct {
	order   []string // handler names, declaration order
	byName  map[string][]handler.FormatDescriptor
	options []Option
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{byName: make(map[string][]handler.FormatDescriptor)}
}

// LoadCache seeds the registry from a previously persisted Cache, in the
// shape described by spec §6, without invoking any handler's Init.
func (r *Registry) LoadCache(c Cache) {
	for _, entry := range c {
		if _, exists := r.byName[entry.HandlerName]; !exists {
			r.order = append(r.order, entry.HandlerName)
		}
		r.byName[entry.HandlerName] = entry.Formats
	}
}

// Build runs the registry protocol against handlers: for each handler not
// already present in the cache, it calls Init; on success the handler's
// declared formats are recorded, on failure the handler is silently skipped
// for the remainder of this build (spec §4.3 "Failure modes"). It then
// flattens the resulting per-handler format lists into a dense option list.
//
// Build is a fatal configuration error if handlers contains two entries with
// the same Name().
func (r *Registry) Build(ctx context.Context, handlers []handler.Handler) error {
	seen := make(map[string]bool, len(handlers))
	for _, h := range handlers {
		if seen[h.Name()] {
			return apperrors.New(apperrors.CategoryRegistry, "build",
				fmt.Errorf("%w: %s", apperrors.ErrDuplicateHandler, h.Name()))
		}
		seen[h.Name()] = true
	}

	for _, h := range handlers {
		if _, cached := r.byName[h.Name()]; cached {
			continue
		}
		if err := h.Init(ctx); err != nil {
			continue // handler-init failure: skip, recovered locally (spec §7)
		}
		formats := normalizeFormats(h.SupportedFormats())
		r.byName[h.Name()] = formats
		r.order = append(r.order, h.Name())
	}

	r.options = r.options[:0]
	idx := 0
	for _, h := range handlers {
		formats := r.byName[h.Name()]
		for _, f := range formats {
			if f.MIME == "" {
				continue // formats with missing MIME are skipped
			}
			r.options = append(r.options, Option{Handler: h, Format: f, Index: idx})
			idx++
		}
	}
	return nil
}

func normalizeFormats(formats []handler.FormatDescriptor) []handler.FormatDescriptor {
	out := make([]handler.FormatDescriptor, len(formats))
	for i, f := range formats {
		f.MIME = mimenorm.Normalize(f.MIME)
		out[i] = f
	}
	return out
}

// Options returns the flat dense option list built by the last call to
// Build.
func (r *Registry) Options() []Option { return r.options }

// ByExtension returns the first option whose Extension matches ext
// case-insensitively and whose Format.From is true.
func (r *Registry) ByExtension(ext string) (Option, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, opt := range r.options {
		if !opt.Format.From {
			continue
		}
		if strings.ToLower(opt.Format.Extension) == ext {
			return opt, true
		}
	}
	return Option{}, false
}

// ByMime normalizes mime and returns the first option with a matching MIME
// and Format.From == true.
func (r *Registry) ByMime(mime string) (Option, bool) {
	norm := mimenorm.Normalize(mime)
	for _, opt := range r.options {
		if !opt.Format.From {
			continue
		}
		if opt.Format.MIME == norm {
			return opt, true
		}
	}
	return Option{}, false
}

// ByFormatTag returns every option (regardless of From/To) whose short
// Format tag matches tag exactly. This is a registry convenience beyond
// spec §4.3's minimum lookup surface, letting callers enumerate handler
// alternatives for a short tag like "png" without knowing MIME strings.
func (r *Registry) ByFormatTag(tag string) []Option {
	var out []Option
	for _, opt := range r.options {
		if opt.Format.Format == tag {
			out = append(out, opt)
		}
	}
	return out
}

// HandlerNames returns the handler names recorded in the cache, in
// declaration order.
func (r *Registry) HandlerNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// FormatsFor returns the cached format list for a handler name.
func (r *Registry) FormatsFor(name string) []handler.FormatDescriptor {
	return r.byName[name]
}

// SetFormatsFor overwrites the cached format list for a handler name,
// appending it to the declaration order if new. Used by the executor to
// refresh the cache once a previously-uninitialized handler becomes ready.
func (r *Registry) SetFormatsFor(name string, formats []handler.FormatDescriptor) {
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = normalizeFormats(formats)
}

// Serialize returns the full cache as an ordered list of
// (handlerName, formats[]), the shape described in spec §6.
func (r *Registry) Serialize() Cache {
	out := make(Cache, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, CacheEntry{HandlerName: name, Formats: r.byName[name]})
	}
	return out
}
