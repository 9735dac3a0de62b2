package tar

type tarOpts struct {
	// maxUntarSize is the limit in bytes of the uncompressed content.
	// Negative values disable the check.
	maxUntarSize int64

	// skipSymlinks ignores symlinks instead of recreating them.
	skipSymlinks bool

	// stripComponents drops this many leading path elements from every
	// entry, like tar's --strip-components.
	stripComponents int
}

type TarOption func(*tarOpts)

func WithMaxUntarSize(max int64) TarOption {
	return func(t *tarOpts) {
		t.maxUntarSize = max
	}
}

func WithSkipSymlinks() TarOption {
	return func(t *tarOpts) {
		t.skipSymlinks = true
	}
}

func WithStripComponents(n int) TarOption {
	return func(t *tarOpts) {
		t.stripComponents = n
	}
}

func (t *tarOpts) applyOpts(tarOpts ...TarOption) {
	for _, clientOpt := range tarOpts {
		clientOpt(t)
	}
}
