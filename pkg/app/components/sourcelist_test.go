package components

import (
	"strings"
	"testing"

	"github.com/kerbaras/comicmerge/pkg/data"
)

func testItems(paths ...string) []SourceItem {
	items := make([]SourceItem, len(paths))
	for i, p := range paths {
		items[i] = SourceItem{
			Source: data.SourceEntry{Path: p, Kind: data.KindCBZ},
			Pages:  -1,
		}
	}
	return items
}

func TestNewSourceList(t *testing.T) {
	list := NewSourceList()

	if list == nil {
		t.Fatal("Expected source list to be created")
	}

	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex 0, got %d", list.SelectedIndex)
	}

	if len(list.Items) != 0 {
		t.Errorf("Expected 0 items, got %d", len(list.Items))
	}
}

func TestSetItemsClampsSelection(t *testing.T) {
	list := NewSourceList()
	list.SetItems(testItems("a.cbz", "b.cbz", "c.cbz"))
	list.SelectedIndex = 2

	list.SetItems(testItems("a.cbz"))

	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex 0 after shrink, got %d", list.SelectedIndex)
	}

	list.SetItems(nil)
	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex 0 on empty list, got %d", list.SelectedIndex)
	}
}

func TestNextPrevWrapAround(t *testing.T) {
	list := NewSourceList()
	list.SetItems(testItems("a.cbz", "b.cbz", "c.cbz"))

	list.Next()
	list.Next()
	if list.SelectedIndex != 2 {
		t.Errorf("Expected SelectedIndex 2, got %d", list.SelectedIndex)
	}

	list.Next()
	if list.SelectedIndex != 0 {
		t.Errorf("Expected Next to wrap to 0, got %d", list.SelectedIndex)
	}

	list.Prev()
	if list.SelectedIndex != 2 {
		t.Errorf("Expected Prev to wrap to 2, got %d", list.SelectedIndex)
	}
}

func TestNextPrevEmptyList(t *testing.T) {
	list := NewSourceList()

	list.Next()
	list.Prev()

	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex to stay 0, got %d", list.SelectedIndex)
	}
}

func TestMoveUpReordersChapters(t *testing.T) {
	list := NewSourceList()
	list.SetItems(testItems("a.cbz", "b.cbz", "c.cbz"))
	list.SelectedIndex = 2

	list.MoveUp()

	sources := list.Sources()
	if sources[1].Path != "c.cbz" || sources[2].Path != "b.cbz" {
		t.Errorf("Expected c.cbz to move to position 1, got %v", sources)
	}

	if list.SelectedIndex != 1 {
		t.Errorf("Expected selection to follow the moved item, got %d", list.SelectedIndex)
	}

	// Can't move past the top
	list.SelectedIndex = 0
	list.MoveUp()
	if list.Sources()[0].Path != "a.cbz" {
		t.Error("Expected MoveUp at index 0 to be a no-op")
	}
}

func TestMoveDownReordersChapters(t *testing.T) {
	list := NewSourceList()
	list.SetItems(testItems("a.cbz", "b.cbz", "c.cbz"))

	list.MoveDown()

	sources := list.Sources()
	if sources[0].Path != "b.cbz" || sources[1].Path != "a.cbz" {
		t.Errorf("Expected a.cbz to move to position 1, got %v", sources)
	}

	if list.SelectedIndex != 1 {
		t.Errorf("Expected selection to follow the moved item, got %d", list.SelectedIndex)
	}

	// Can't move past the bottom
	list.SelectedIndex = 2
	list.MoveDown()
	if list.Sources()[2].Path != "c.cbz" {
		t.Error("Expected MoveDown at last index to be a no-op")
	}
}

func TestRemove(t *testing.T) {
	list := NewSourceList()
	list.SetItems(testItems("a.cbz", "b.cbz", "c.cbz"))
	list.SelectedIndex = 1

	list.Remove()

	sources := list.Sources()
	if len(sources) != 2 {
		t.Fatalf("Expected 2 items after remove, got %d", len(sources))
	}
	if sources[0].Path != "a.cbz" || sources[1].Path != "c.cbz" {
		t.Errorf("Expected b.cbz removed, got %v", sources)
	}
}

func TestRemoveLastItemAdjustsSelection(t *testing.T) {
	list := NewSourceList()
	list.SetItems(testItems("a.cbz", "b.cbz"))
	list.SelectedIndex = 1

	list.Remove()

	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex 0, got %d", list.SelectedIndex)
	}

	list.Remove()
	if len(list.Items) != 0 {
		t.Errorf("Expected empty list, got %d items", len(list.Items))
	}

	list.Remove() // no-op on empty
}

func TestSelected(t *testing.T) {
	list := NewSourceList()

	if list.Selected() != nil {
		t.Error("Expected nil selection on empty list")
	}

	list.SetItems(testItems("a.cbz", "b.cbz"))
	list.SelectedIndex = 1

	selected := list.Selected()
	if selected == nil {
		t.Fatal("Expected a selected item")
	}
	if selected.Source.Path != "b.cbz" {
		t.Errorf("Expected b.cbz selected, got %s", selected.Source.Path)
	}
}

func TestViewEmpty(t *testing.T) {
	list := NewSourceList()

	view := list.View()
	if !strings.Contains(view, "No source archives") {
		t.Error("Expected empty state message")
	}
}

func TestViewShowsChapterOrder(t *testing.T) {
	list := NewSourceList()
	items := testItems("/comics/vol1.cbz", "/comics/vol2.zip")
	items[1].Source.Kind = data.KindZIP
	items[1].Pages = 24
	list.SetItems(items)

	view := list.View()

	if !strings.Contains(view, "Chapter 1") || !strings.Contains(view, "vol1.cbz") {
		t.Error("Expected first card to show chapter 1")
	}
	if !strings.Contains(view, "Chapter 2") || !strings.Contains(view, "vol2.zip") {
		t.Error("Expected second card to show chapter 2")
	}
	if !strings.Contains(view, "Pages: not scanned") {
		t.Error("Expected unscanned source to say so")
	}
	if !strings.Contains(view, "Pages: 24") {
		t.Error("Expected scanned page count")
	}
}
