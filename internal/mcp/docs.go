package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `songbook stores songwriting material as Projects → Sections + Recordings.

- A Project owns its sections and recordings. Exactly one project is
  "current"; every section/recording tool operates on the current project.
- Sections are typed lyric blocks (verse, chorus, bridge, pre-chorus,
  outro, tag, intro, hook — or any custom tag). Star the keepers.
- Recordings are audio takes captured from the microphone. Use
  start_recording / stop_recording; a stopped take is validated and stored
  under the current project automatically. Pass discard=true to throw a
  take away.
- With no project selected, material lands in the "unassigned" bucket;
  adding a section with no project at all creates an Untitled project for
  you.

Read the songbook://docs/model resource for the data model details.`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "songbook://docs/model",
		Name:        "data-model",
		Title:       "Songbook data model",
		Description: "Projects, sections, recordings, and how partitions work",
		Content: `# Songbook data model

## Projects

A project has an id, a display name, and timestamps. Projects are listed
newest first. Deleting a project deletes its sections and recordings in the
same step; the audio files on disk are not touched.

## Sections

A section is a typed block of lyric text: id, type tag, optional title,
optional content, a starred flag, and a creation time. The type enumeration
is open — verse/chorus/bridge/pre-chorus/outro/tag/intro/hook are seeded,
any non-empty tag is accepted.

## Recordings

A recording references an audio artifact by URI with a duration in whole
seconds. Once stored it is immutable except for its display name. The list
is kept newest first.

## Partitions

Sections and recordings live in per-project partitions. Material created
before any project exists sits in the reserved "unassigned" partition.
Moving material between projects is not supported.

## Recording lifecycle

start_recording acquires the microphone; at most one capture session exists
at a time. stop_recording finalizes the take, validates it (existence, size
between 100 bytes and 50 MiB, known audio extension), and stores it under
the current project. A take that fails validation is reported and never
stored.`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
