// Package confstore implements a JSON configuration store backed by a Source,
// which may refer to a local file or to a remote blob.  Local file sources are
// watched for changes, and the store re-reads its contents whenever the
// underlying file settles after modification.  A re-read that fails for any
// reason leaves the previously parsed configuration in place.
package confstore
