// Package document implements the document layer (§4.4–§4.5): a catalog
// mapping URI<->documentId layered on the vector index, chunking/batched
// embedding ingestion, document deletion, and query-time grouping of
// top-scoring chunks into DocumentResults ready for section rendering.
package document

// Catalog is the persisted shape of catalog.json (§3, §6).
type Catalog struct {
	Version  int               `json:"version"`
	Count    int               `json:"count"`
	URIToID  map[string]string `json:"uri_to_id"`
	IDToURI  map[string]string `json:"id_to_uri"`
}

func newCatalog() *Catalog {
	return &Catalog{Version: 1, URIToID: map[string]string{}, IDToURI: map[string]string{}}
}

func (c *Catalog) clone() *Catalog {
	if c == nil {
		return nil
	}
	uriToID := make(map[string]string, len(c.URIToID))
	for k, v := range c.URIToID {
		uriToID[k] = v
	}
	idToURI := make(map[string]string, len(c.IDToURI))
	for k, v := range c.IDToURI {
		idToURI[k] = v
	}
	return &Catalog{Version: c.Version, Count: c.Count, URIToID: uriToID, IDToURI: idToURI}
}

// CatalogStats is the result of GetCatalogStats.
type CatalogStats struct {
	Version   int
	Documents int
	Chunks    int
}
