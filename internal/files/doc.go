// Package files locates the raw performance workbooks a pipeline run reads.
package files
