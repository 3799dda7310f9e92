package merkle

// Option configures a Tree at construction time.
type Option func(*config)

type config struct {
	algorithm Algorithm
	encoding  TextEncoding
	security  bool
}

func defaultConfig() config {
	return config{algorithm: SHA256, encoding: EncodingUTF8, security: true}
}

// WithAlgorithm selects the digest algorithm. Default: SHA256.
func WithAlgorithm(a Algorithm) Option {
	return func(c *config) { c.algorithm = a }
}

// WithEncoding selects the text encoding digests are rendered in. Default: utf-8.
func WithEncoding(e TextEncoding) Option {
	return func(c *config) { c.encoding = e }
}

// WithSecurity toggles RFC 6962-style domain separation prefixes. Default: on.
func WithSecurity(on bool) Option {
	return func(c *config) { c.security = on }
}
