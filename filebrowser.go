package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/benwiggins/modtracker/pkg/mod"
)

var fileStyle = tcell.StyleDefault.Background(sampleBgColour).Foreground(sampleFgColour)
var fileHighlightStyle = tcell.StyleDefault.Background(sampleHighlightBgColour).Foreground(sampleHighlightFgColour).Bold(true)
var modRegexp = regexp.MustCompile(`(?i)\.mod$`)

type browserEntry struct {
	name  string
	isDir bool
	size  int64
	title string // song title once previewed, "" until then
}

type browserState struct {
	dir     string
	idx     int
	entries []browserEntry
}

func readEntries(path string) ([]browserEntry, error) {
	var entries []browserEntry

	if path != "/" {
		entries = append(entries, browserEntry{name: "../", isDir: true})
	}

	files, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if f.IsDir() {
			entries = append(entries, browserEntry{name: f.Name() + "/", isDir: true})
			continue
		}
		if !modRegexp.MatchString(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		entries = append(entries, browserEntry{name: f.Name(), size: info.Size()})
	}

	return entries, nil
}

// previewTitle parses just enough of a module to show its song title
// next to the filename. Unparseable files show as blank.
func previewTitle(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	song, err := mod.LoadSong(data)
	if err != nil {
		return ""
	}
	return song.Title
}

// browse shows a full-screen picker under startDir and returns the
// chosen module path. It owns its own tcell screen so the caller can
// suspend the player UI around it.
func browse(startDir string) string {
	s, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := s.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer s.Fini()

	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	s.Clear()

	dir, err := filepath.Abs(startDir)
	if err != nil {
		dir = startDir
	}
	state := &browserState{dir: dir}
	state.entries, err = readEntries(state.dir)
	if err != nil {
		s.Fini()
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	terminate := make(chan struct{})
	defer close(terminate)

	go func() {
		for {
			select {
			case <-terminate:
				return
			default:
			}

			drawBox(s, 0, 0, 130, 38)
			yPos := 1
			for idx := range state.entries {
				entry := &state.entries[idx]
				style := fileStyle
				if idx == state.idx {
					style = fileHighlightStyle
				}
				xPos := 1
				drawText(s, xPos, yPos, 32, 1, style, fmt.Sprintf("%-31s", entry.name))
				xPos += 32

				if entry.isDir {
					drawText(s, xPos, yPos, 9, 1, style, "<dir>")
				} else {
					drawText(s, xPos, yPos, 9, 1, style, fmt.Sprintf("%-8d", entry.size))
					xPos += 9
					if entry.title == "" {
						entry.title = previewTitle(filepath.Join(state.dir, entry.name))
					}
					drawText(s, xPos, yPos, 20, 1, style, entry.title)
				}
				yPos++
			}
			s.Show()
			time.Sleep(time.Second / 60)
		}
	}()

	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyDown:
				if state.idx < len(state.entries)-1 {
					state.idx++
				} else {
					state.idx = 0
				}
			case tcell.KeyUp:
				if state.idx > 0 {
					state.idx--
				} else {
					state.idx = len(state.entries) - 1
				}
			case tcell.KeyHome:
				state.idx = 0
			case tcell.KeyEnd:
				state.idx = len(state.entries) - 1
			case tcell.KeyEscape:
				s.Fini()
				os.Exit(0)
			case tcell.KeyEnter:
				entry := state.entries[state.idx]
				if entry.isDir {
					next, err := filepath.Abs(filepath.Join(state.dir, entry.name))
					if err != nil {
						continue
					}
					entries, err := readEntries(next)
					if err != nil {
						continue
					}
					state.dir = next
					state.idx = 0
					state.entries = entries
					s.Clear()
				} else {
					return filepath.Join(state.dir, entry.name)
				}
			}
		}
	}
}
