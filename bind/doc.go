// Package bind runs captured source fragments through layers of map
// lookups and function invocations and writes the results into generated
// files.
//
// A bind file declares groups. Each group names source files and captures;
// each capture is a regular expression whose matches are threaded through
// the capture's layers in order, escaped, and appended to the group's
// output:
//
//	[[groups]]
//	files = ["include/*.h"]
//	axbind_filename = "gen/{group}.txt"
//
//	[[groups.captures]]
//	capture = 'BIND\((?P<capture>\w+)\)'
//	layers = [{ map = "names" }, { function = "upper" }]
//
// Maps and functions are definition files below a configuration root,
// loaded once per run through [filebase.Axbind]. Failures of one capture
// are recorded in the [Report] and never stop the other captures.
package bind
