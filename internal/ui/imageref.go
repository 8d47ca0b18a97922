package ui

const (
	placeholderCharacter = "placeholder-character.png"
	placeholderScene     = "placeholder-scene.png"
)

// ImageRef is an image source with a one-shot placeholder fallback. The first
// load failure swaps in the placeholder and disarms the handler, so a broken
// placeholder cannot trigger another swap.
type ImageRef struct {
	URL         string
	Placeholder string

	fellBack bool
	disarmed bool
	probed   bool
}

// NewImageRef creates a ref for url. An empty url starts on the placeholder.
func NewImageRef(url, placeholder string) *ImageRef {
	r := &ImageRef{URL: url, Placeholder: placeholder}
	if url == "" {
		r.OnError()
	}
	return r
}

// Src is what should be displayed right now.
func (r *ImageRef) Src() string {
	if r.fellBack {
		return r.Placeholder
	}
	return r.URL
}

// OnError handles a load failure. It returns true only the first time.
func (r *ImageRef) OnError() bool {
	if r.disarmed {
		return false
	}
	r.disarmed = true
	r.fellBack = true
	return true
}

// NeedsProbe reports whether the URL has not been checked yet, and marks it checked.
func (r *ImageRef) NeedsProbe() bool {
	if r.probed || r.fellBack || r.URL == "" {
		return false
	}
	r.probed = true
	return true
}

// imageSet keeps refs by key across list refreshes so a fallback sticks
// until the URL itself changes.
type imageSet map[string]*ImageRef

// ensure returns the ref for key, replacing it when url changed. fresh is true
// when the caller should probe the returned ref.
func (s imageSet) ensure(key, url, placeholder string) (ref *ImageRef, fresh bool) {
	if r, ok := s[key]; ok && r.URL == url {
		return r, false
	}
	r := NewImageRef(url, placeholder)
	s[key] = r
	return r, r.NeedsProbe()
}

// prune drops refs whose key is not in keep.
func (s imageSet) prune(keep map[string]bool) {
	for k := range s {
		if !keep[k] {
			delete(s, k)
		}
	}
}

// fail applies a probe failure. Stale probes for a replaced URL are ignored.
func (s imageSet) fail(key, url string) bool {
	r, ok := s[key]
	if !ok || r.URL != url {
		return false
	}
	return r.OnError()
}
