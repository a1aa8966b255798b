// Package events maps between the daemon's event stream wire format and the
// client's types: it decodes raw stream chunks into api.Event values and
// encodes an api.Filter as the query of the events endpoint.
//
// The filters query parameter uses the daemon's naming, which is inverted
// relative to the client's: the resource whitelist travels under the key
// "type" and the event type whitelist under the key "event".
package events
