// Package pipeline runs a username search as a sequence of steps: refresh
// and load the site list, search every site, export the results and store
// the run in the history database.
//
// Each step receives the Run being built and fills in its part. Steps that
// cannot complete but leave the run usable (a failed list refresh, a failed
// export) record the problem and return nil; only steps the rest of the run
// depends on return an error. BatchProcessor runs one pipeline per username.
package pipeline
