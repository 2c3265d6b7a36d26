package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/chama/core/auth"
	"github.com/trezcool/chama/core/post"
)

func Test_postApi(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	editor := app.createUser(t, "Editor", "editor", "editor@test.cd", "", true)
	usr := app.createUser(t, "User", "awe", "awe@test.cd", "", true)
	editorToken := app.getToken(t, editor, auth.RoleEditor)
	memberToken := app.getToken(t, usr, auth.RoleMember)

	published, err := app.pstSvc.Create(ctx, editor.ID, post.NewPost{Title: "Welcome", Body: "hello", Publish: true})
	if err != nil {
		t.Fatalf("pstSvc.Create(): %v", err)
	}
	draft, err := app.pstSvc.Create(ctx, editor.ID, post.NewPost{Title: "WIP", Body: "soon"})
	if err != nil {
		t.Fatalf("pstSvc.Create(): %v", err)
	}

	tests := []httpTest{
		{
			name: "public listing shows published only", path: "/v1/posts",
			wantData: marchallList(t, published),
		},
		{
			name: "public retrieve", path: "/v1/posts/" + published.Slug,
			wantData: marchallObj(t, published),
		},
		{
			name: "draft hidden from public", path: "/v1/posts/" + draft.Slug,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "staff listing requires auth", path: "/v1/posts/all",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "staff listing requires blog management", path: "/v1/posts/all", token: memberToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "staff listing includes drafts", path: "/v1/posts/all", token: editorToken,
			wantData: marchallList(t, draft, published),
		},
		{
			name: "create requires blog management", method: http.MethodPost, path: "/v1/posts", token: memberToken,
			body:     marchallObj(t, post.NewPost{Title: "Hax", Body: "hax"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	runTable(t, app, tests)

	t.Run("author comes from the token", func(t *testing.T) {
		body := marchallObj(t, post.NewPost{Title: "News", Body: "big news", Publish: true})
		req, rec := newAuthRequest(http.MethodPost, "/v1/posts", editorToken, body)
		app.serve(req, rec)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; body = %v", rec.Code, rec.Body.String())
		}
		var pst post.Post
		if err := json.Unmarshal(rec.Body.Bytes(), &pst); err != nil {
			t.Fatalf("unmarshalling post: %v", err)
		}
		if pst.AuthorID != editor.ID {
			t.Errorf("AuthorID = %q, want %q", pst.AuthorID, editor.ID)
		}
	})
}
