package loader

import (
	"encoding/xml"
	"strconv"

	pkgerrors "github.com/pkg/errors"

	"github.com/tilengo/tilengo/internal/gfx"
)

type tmxObjectGroup struct {
	Name    string `xml:"name,attr"`
	Objects []struct {
		ID      int     `xml:"id,attr"`
		GID     uint32  `xml:"gid,attr"`
		Name    string  `xml:"name,attr"`
		Type    string  `xml:"type,attr"`
		X       float64 `xml:"x,attr"`
		Y       float64 `xml:"y,attr"`
		W       float64 `xml:"width,attr"`
		H       float64 `xml:"height,attr"`
		Visible string  `xml:"visible,attr"`
	} `xml:"object"`
}

type tmxObjectFile struct {
	XMLName xml.Name         `xml:"map"`
	Groups  []tmxObjectGroup `xml:"objectgroup"`
}

// LoadObjectList reads one object group of a Tiled .tmx map. An empty
// groupName selects the first group.
func (ld *Loader) LoadObjectList(name, groupName string) (*gfx.ObjectList, error) {
	data, err := ld.readFile(name)
	if err != nil {
		return nil, err
	}
	var tmx tmxObjectFile
	if err := xml.Unmarshal(data, &tmx); err != nil {
		return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s: %v", name, err)
	}
	if len(tmx.Groups) == 0 {
		return nil, pkgerrors.Wrapf(ErrWrongFormat, "%s: no object groups", name)
	}
	group := &tmx.Groups[0]
	if groupName != "" {
		group = nil
		for i := range tmx.Groups {
			if tmx.Groups[i].Name == groupName {
				group = &tmx.Groups[i]
				break
			}
		}
		if group == nil {
			return nil, pkgerrors.Wrapf(ErrFileNotFound, "%s: object group %s", name, groupName)
		}
	}
	list := objectListFrom(group)
	ld.log.Debugf("object list %s loaded, group %s, %d items", name, group.Name, list.NumItems())
	return list, nil
}

func objectListFrom(group *tmxObjectGroup) *gfx.ObjectList {
	items := make([]gfx.ObjectItem, 0, len(group.Objects))
	for _, o := range group.Objects {
		item := gfx.ObjectItem{
			ID:      uint16(o.ID),
			GID:     uint16(o.GID & tmxGID),
			X:       int(o.X),
			Y:       int(o.Y),
			W:       int(o.W),
			H:       int(o.H),
			Visible: o.Visible != "0",
			Name:    o.Name,
		}
		if v, err := strconv.Atoi(o.Type); err == nil {
			item.Type = uint8(v)
		}
		if o.GID&tmxFlipH != 0 {
			item.Flags |= gfx.FlagFlipX
		}
		if o.GID&tmxFlipV != 0 {
			item.Flags |= gfx.FlagFlipY
		}
		items = append(items, item)
	}
	return gfx.NewObjectList(items)
}
