// Package report turns WPForms entries into a table and writes it out.
//
// A Table has the fixed columns ID, Date and Form followed by one column per
// distinct field name across the selected entries. Entries that lack a field
// get a blank cell.
//
// The Exporter writes a table to a uniquely named file (CSV with
// encoding/csv, XLSX with github.com/xuri/excelize/v2), streams it as an
// attachment with no-cache headers, and deletes it afterwards.
package report
