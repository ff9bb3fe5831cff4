// Package activity holds the data model shown on the activity board.
//
// The backend serves activities as a single JSON object keyed by activity
// name:
//
//	{
//	  "Chess Club": {
//	    "description": "Learn strategies and compete in chess tournaments",
//	    "schedule": "Fridays, 3:30 PM - 5:00 PM",
//	    "max_participants": 12,
//	    "participants": ["michael@mergington.edu", "daniel@mergington.edu"]
//	  }
//	}
//
// A Collection decodes that object while keeping the order the server sent
// the keys in, so the board lists activities in server order. A Collection is
// a snapshot: every fetch builds a new one and nothing is merged between
// fetches.
//
// SpotsLeft is derived and never stored. The capacity invariant
// (participants <= max_participants) is enforced by the backend only, so
// SpotsLeft can be negative.
package activity
