// Package board implements the activity board controller.
//
// A Board owns everything one viewer sees: the rendered activity list, the
// activity selector, the signup form values and the status message region.
// It runs the refresh cycle: fetch the activities, render them with the pure
// functions in package render, and swap the result in wholesale.
//
// # Operations
//
//   - Refresh fetches and re-renders. On failure the list shows a notice and
//     the selector keeps its previous options.
//   - SubmitSignup signs an email up, refreshes, then shows the server message
//     and clears the form. Errors show the server detail or a fallback and
//     keep the form.
//   - RemoveParticipant asks a Confirmer first. A declined prompt does
//     nothing. Otherwise the badge is marked removing, the board waits for the
//     fade delay, sends one removal request, refreshes and shows the outcome.
//
// # Status message
//
// The message region is hidden, visible-success or visible-error. Every
// outcome replaces the content immediately and restarts the hide timer;
// the region hides once the TTL passes with no newer outcome.
//
// # Concurrency
//
// A Board is safe for concurrent use. Only one mutation (signup or removal)
// runs at a time per board: a second one started while the first is in
// flight is rejected with a busy message, and controls render disabled in
// the meantime. Refreshes are not guarded and the last one to finish wins.
//
// # Example
//
//	b := board.New(client, board.WithLogger(logger))
//	if err := b.Refresh(ctx); err != nil {
//	    // the failure notice is already rendered
//	}
//	msg := b.SubmitSignup(ctx, "Chess Club", "a@mergington.edu")
//	fmt.Println(msg.Text)
package board
