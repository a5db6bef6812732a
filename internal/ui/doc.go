// Package ui renders hublink's terminal output with Lip Gloss.
//
// # Components
//
//	ProgressView  - Draws animator frames as a single redrawn line, or as
//	                one line per step when output is not a terminal
//	Notifier      - Prints the outcome of a connection (connect.Notifier)
//	TargetPicker  - Bubble Tea list for choosing a community
//	ConsentPrompt - Huh confirmation before a credential is requested
//	Spinner       - Indeterminate wait indicator
//	Tables        - Saved connections and administered communities
//
// # Colors
//
// Colors are ANSI codes. ConfigureColors picks the profile from the output
// and the --no-color flag; DisableColors forces monochrome.
//
// # Outcome messages
//
// OutcomeMessage maps every error code to a message. A refused authorization
// is shown calmly, not as a failure:
//
//	⊘ Connection cancelled: access was not granted
package ui
