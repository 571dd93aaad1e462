package server

import "net/http"

// setFlash queues a status message to be displayed once on the next page
// load, surviving the redirect-after-write navigation pattern.
func (s *Server) setFlash(w http.ResponseWriter, r *http.Request, msg string) {
	sess, err := s.cookies.Get(r, sessionCookieName)
	if err != nil {
		return
	}
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		s.log.Warn("saving flash", "error", err)
	}
}

// popFlash returns and clears any pending status messages.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) []string {
	sess, err := s.cookies.Get(r, sessionCookieName)
	if err != nil {
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		s.log.Warn("clearing flash", "error", err)
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
