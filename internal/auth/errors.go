package auth

import "github.com/coryodaniel/k8s-sub001/internal/sentinel"

const errNoCertMaterial = sentinel.Error("k8s: no client certificate material cached")
const errEmptyToken = sentinel.Error("k8s: bearer token is empty")
