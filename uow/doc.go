// Package uow coordinates writes across the primary and secondary stores.
//
// A Session is opened per request. Its repositories stage creates, updates
// and deletes in memory; CommitAll then runs one transaction per store, the
// primary first. The two transactions are independent: there is no two
// phase commit, and a change can reach one store while the other rolls
// back.
//
//	s, err := factory.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	s.Heroes().Create(h)
//	s.AuditLog().Record(auditlog.LevelInformation, "Created {Name}", "Created "+h.Name, nil, nil)
//	s.CommitAll(ctx)
//
//	if !s.Heroes().Persisted(h) {
//		// the primary commit failed and was rolled back
//	}
package uow
