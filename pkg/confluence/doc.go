// Package confluence is a typed client for the Confluence REST API.
//
// Requests are assembled by builder chains that only offer the transitions
// legal at each point, so an invalid endpoint does not compile:
//
//	c, err := confluence.New("https://wiki.example.com/rest/api",
//		confluence.WithBasicAuth("me@example.com", token))
//	if err != nil {
//		return err
//	}
//
//	resp, err := confluence.Execute[confluence.Results[confluence.Content]](ctx,
//		c.Get().Content().SpaceKey("ICF").Title(url.QueryEscape("My Page")).Expand("version"))
//	if err != nil {
//		return err
//	}
//	if resp.StatusCode != http.StatusOK || resp.Data == nil {
//		return fmt.Errorf("lookup failed with status %d: %s", resp.StatusCode, resp.Raw)
//	}
//
// Values that cannot be placed in the URL are held by the chain and returned
// by Execute as a *ConstructionError, without touching the network. Query
// values are appended as given; escape them with url.QueryEscape first.
package confluence
