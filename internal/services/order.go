package services

import "sort"

// OrderVideoFiles sorts GoPro file names into recording order. A name is
// split into a chapter prefix of prefixLen characters and the remaining video
// id; names are ordered by video id first and chapter second, so every
// chapter of one recording stays together and in sequence.
func OrderVideoFiles(names []string, prefixLen int) []string {
	type split struct {
		video, chapter string
	}

	parts := make([]split, len(names))
	for i, name := range names {
		if len(name) < prefixLen {
			parts[i] = split{video: name}
			continue
		}
		parts[i] = split{video: name[prefixLen:], chapter: name[:prefixLen]}
	}

	sort.SliceStable(parts, func(i, j int) bool {
		if parts[i].video != parts[j].video {
			return parts[i].video < parts[j].video
		}
		return parts[i].chapter < parts[j].chapter
	})

	ordered := make([]string, len(parts))
	for i, p := range parts {
		ordered[i] = p.chapter + p.video
	}
	return ordered
}
