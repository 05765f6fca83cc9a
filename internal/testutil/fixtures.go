package testutil

// ConnectionsIndexJSON is a connections index keyed by focus document.
// "notes/focus.md" carries block and note records at mixed scores.
const ConnectionsIndexJSON = `{
  "notes/focus.md": [
    {"targetId": "notes/alpha.md#Intro", "score": 0.91, "kind": "block"},
    {"targetId": "notes/beta.md", "score": 0.74, "kind": "note"},
    {"targetId": "notes/gamma.md#Setup#Install", "score": 0.58, "kind": "block"},
    {"targetId": "notes/delta.md#[[Links]]", "score": 0.32, "kind": "block"}
  ],
  "notes/alpha.md": [
    {"targetId": "notes/focus.md", "score": 0.88, "kind": "note"},
    {"targetId": "notes/beta.md#Summary", "score": 0.61, "kind": "block"}
  ]
}`

// ConnectionsListJSON is the output of a scoring command for one focus document.
const ConnectionsListJSON = `[
  {"targetId": "notes/alpha.md#Intro", "score": 0.91, "kind": "block"},
  {"targetId": "notes/beta.md", "score": 0.74, "kind": "note"},
  {"targetId": "notes/gamma.md#Setup", "score": 0.42, "kind": "block"}
]`
