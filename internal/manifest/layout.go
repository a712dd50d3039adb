package manifest

import (
	"path"
	"strings"
)

// Layout places partner manifests on the file drop:
// /<Root>/<partner folder>/tracking/<CODE>.csv
type Layout struct {
	Root string
	// FolderOverride sends every partner to one folder, e.g. a test customer.
	FolderOverride string
}

func (l Layout) RemotePath(partnerCode, partnerFolder string) string {
	folder := l.FolderOverride
	if folder == "" {
		folder = partnerFolder
	}
	if folder == "" {
		folder = strings.ToLower(partnerCode)
	}
	return RemoteCSVPath(path.Join(l.Root, folder, "tracking"), partnerCode)
}

// RemoteCSVPath joins folder and "<code>.csv" into an absolute path.
func RemoteCSVPath(folder, partnerCode string) string {
	name := partnerCode + ".csv"
	folder = strings.Trim(folder, "/ ")
	if folder == "" {
		return "/" + name
	}
	return "/" + folder + "/" + name
}
