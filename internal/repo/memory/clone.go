package memory

import "github.com/tazhibayda/mylist-service/internal/domain"

// Values handed out never alias stored state, the same way a document
// decoded from Mongo never does.

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	out := *u
	out.Profiles = make([]domain.Profile, len(u.Profiles))
	for i, p := range u.Profiles {
		out.Profiles[i] = cloneProfile(p)
	}
	return &out
}

func cloneProfile(p domain.Profile) domain.Profile {
	p.MyList = domain.MyList{
		Movies: cloneItems(p.MyList.Movies),
		Series: cloneItems(p.MyList.Series),
		Games:  cloneItems(p.MyList.Games),
	}
	return p
}

func cloneItems(items []domain.Item) []domain.Item {
	out := make([]domain.Item, len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	return out
}

func cloneItem(it domain.Item) domain.Item {
	out := make(domain.Item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}
