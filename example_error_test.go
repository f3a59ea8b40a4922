package frame_test

import (
	"context"
	"errors"
	"fmt"

	"impractical.co/frame"
)

func ExampleSite_Render_missingHead() {
	// a stylesheet alone isn't enough, every page needs the head fragment
	fragments, err := frame.NewFragmentStore(frame.Fragment{
		Name:    frame.StylesheetFragment,
		Content: "body { color: black; }",
	})
	if err != nil {
		panic(err)
	}
	site, err := frame.NewSite(fragments, []frame.NavEntry{
		{ID: "news", Label: "News", Href: "/news"},
	})
	if err != nil {
		panic(err)
	}

	_, err = site.Render(context.Background(), frame.PageRequest{
		CurrentPageID: "news",
		Body:          "<p>Hi</p>",
	})
	fmt.Println(errors.Is(err, frame.ErrNotFound))

	var notFound *frame.NotFoundError
	if errors.As(err, &notFound) {
		fmt.Println(notFound.Name)
	}

	//Output:
	// true
	// head
}
