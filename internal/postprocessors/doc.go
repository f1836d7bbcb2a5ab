// Package postprocessors turns extracted documents into chunks ready for
// embedding. It holds the chunker registry and the pipeline that applies
// clean-up steps to a chunker's output.
package postprocessors
