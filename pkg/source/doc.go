// Package source gets architecture payloads into the process.
//
// A [Fetcher] downloads a payload from a model description service,
// retrying network errors, 5xx and 429 responses with exponential backoff
// (see [github.com/matzehuels/layerscape/pkg/httputil]). [Fetcher.FetchAsync]
// runs the same fetch in the background and delivers a single [Result].
// [Fetcher.Ping] only checks that the service answers.
//
// [Load] resolves the references the CLI accepts: a model name from the
// configuration's [models] table ([ResolveModel]), a URL, "-" for stdin,
// or a local JSON/YAML file.
package source
