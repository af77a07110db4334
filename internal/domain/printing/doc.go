// Package printing contains the label printing bounded context: paper sizes,
// the page layout engine and the print jobs that record each export or print.
package printing
