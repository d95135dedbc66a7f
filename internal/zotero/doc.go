// Package zotero talks to the Zotero web API.
//
// The client performs authenticated GETs with a bounded retry loop, exposes
// the Last-Modified-Version header and the rel="next" pagination link from
// each response, and can walk a full pagination chain into one concatenated
// body. A 403 is never retried; it is returned alongside ErrForbidden so
// callers decide how to handle revoked library access.
package zotero
